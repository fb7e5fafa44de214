package extraction

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIbuprofenLabel(t *testing.T) {
	text := "NDC: 99999-888-77 IBUPROFEN 400mg TABLETS Generic Pharma Corp Strength: 400mg Package Size: 60 tablets"

	res := Extract(text)

	assert.Equal(t, "99999-888-77", res.Fields.NDC)
	assert.Equal(t, "tablet", res.Fields.DosageForm)
	assert.Equal(t, "400mg", res.Fields.Strength)
	assert.Empty(t, res.Fields.Manufacturer)
	// "NDC:", "IBUPROFEN" and "TABLETS" each start a run that stops after one token.
	assert.Empty(t, res.Fields.Name)
	assert.Equal(t, "60 tablets", res.Fields.PackageSize)
	assert.InDelta(t, 4.0/6.0, res.Confidence, 1e-9)
}

func TestExtractEmptyInput(t *testing.T) {
	res := Extract("")

	assert.Equal(t, Fields{}, res.Fields)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestExtractAllSignals(t *testing.T) {
	text := strings.Join([]string{
		"NDC 0049-4900-66",
		"ZOLOFT SERTRALINE HCL",
		"Pfizer Labs",
		"Tablets 50 mg",
		"Bottle of 30 tablets",
	}, "\n")

	res := Extract(text)

	assert.Equal(t, Fields{
		NDC:          "0049-4900-66",
		Name:         "ZOLOFT SERTRALINE HCL",
		Manufacturer: "Pfizer",
		DosageForm:   "tablet",
		Strength:     "50 mg",
		PackageSize:  "30 tablets",
	}, res.Fields)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestExtractFirstNDCWins(t *testing.T) {
	res := Extract("NDC 12345-678-90 replaces 54321-876-09")
	assert.Equal(t, "12345-678-90", res.Fields.NDC)
}

func TestExtractNDCNeedsWordBoundary(t *testing.T) {
	res := Extract("lot 123456-78-9 and 1234-5678-123")
	assert.Empty(t, res.Fields.NDC)
}

func TestExtractDosageFormVocabularyOrder(t *testing.T) {
	res := Extract("cherry syrup, not a tablet")
	assert.Equal(t, "tablet", res.Fields.DosageForm)

	res = Extract("Ophthalmic drops in solution")
	assert.Equal(t, "solution", res.Fields.DosageForm)
}

func TestExtractManufacturerTitleCase(t *testing.T) {
	res := Extract("pfizer laboratories")
	assert.Equal(t, "Pfizer", res.Fields.Manufacturer)

	res = Extract("distributed by TEVA for MERCK")
	assert.Equal(t, "Merck", res.Fields.Manufacturer)

	res = Extract("GSK consumer health")
	assert.Equal(t, "Gsk", res.Fields.Manufacturer)
}

func TestExtractStrengthFirstMatch(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Amoxicillin 250mg per 5ml", "250mg"},
		{"each dose 2.5 MG", "2.5 MG"},
		{"vitamin B12 1000mcg", "1000mcg"},
		{"no strength here", ""},
		{"Tablets 50\u00a0mg", "50\u00a0mg"},
		{"Tablets 25\u2009mcg", "25\u2009mcg"},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(tc.text).Fields.Strength)
		})
	}
}

func TestExtractNameRules(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"digits continue a run", "take ADVIL 200 daily", "ADVIL 200"},
		{"single token does not qualify", "ASPIRIN chewable", ""},
		{"short start token is skipped", "ABC DEFG", ""},
		{"longest run wins", "TYLENOL PM then EXTRA STRENGTH TYLENOL", "EXTRA STRENGTH TYLENOL"},
		{"manufacturer tokens are absorbed", "LIPITOR PFIZER 20", "LIPITOR PFIZER 20"},
		{"mixed case breaks run", "IBUPROFEN 400mg TABLETS", ""},
		{"tie keeps first run", "ALPHA BETA then GAMMA DELT", "ALPHA BETA"},
		{"superscript digits continue a run", "take ADVIL ² daily", "ADVIL ²"},
		{"title-case letter is not upper", "\u01c5UNGLA TABS", ""},
		{"lower modifier letter breaks run", "NOVAª PLUS", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(tc.text).Fields.Name)
		})
	}
}

func TestConfidenceMatchesFilledFields(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t ",
		"pfizer",
		"NDC 12345-678-90 cream",
		"NDC 12345-678-90 cream 10 g",
		"NDC 12345-678-90 MERCK cream 10 g 20 tubes",
		"NDC 0049-4900-66 ZOLOFT SERTRALINE Pfizer Tablets 50 mg 30 tablets",
	}
	allowed := map[float64]bool{}
	for i := 0; i <= FieldCount; i++ {
		allowed[float64(i)/FieldCount] = true
	}

	for _, in := range inputs {
		res := Extract(in)
		f := res.Fields
		filled := 0
		for _, v := range []string{f.NDC, f.Name, f.Manufacturer, f.DosageForm, f.Strength, f.PackageSize} {
			if strings.TrimSpace(v) != "" {
				filled++
			}
		}
		require.True(t, allowed[res.Confidence], "confidence %v for %q", res.Confidence, in)
		assert.Equal(t, float64(filled)/FieldCount, res.Confidence, in)
	}
}

func TestConfidenceIgnoresWhitespaceValues(t *testing.T) {
	assert.Equal(t, 0.0, Confidence(Fields{Name: "  ", NDC: "\t"}))
	assert.InDelta(t, 2.0/6.0, Confidence(Fields{Name: "X", NDC: "1"}), 1e-9)
}

func TestExtractConcurrentCallsAreIndependent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := Extract("NDC 12345-678-90 ROCHE capsule 5 mg")
			assert.Equal(t, "12345-678-90", res.Fields.NDC)
			assert.Equal(t, "Roche", res.Fields.Manufacturer)
		}()
	}
	wg.Wait()
}

func TestExtractPackageSizeNoBreakSpace(t *testing.T) {
	assert.Equal(t, "30\u00a0tablets", Extract("Bottle of 30\u00a0tablets").Fields.PackageSize)
}
