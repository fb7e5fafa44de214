// Package extraction turns OCR text from a drug label into candidate SKU field values.
package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// FieldCount is the number of fields that feed the confidence score.
const FieldCount = 6

var (
	ndcPattern         = regexp.MustCompile(`\b\d{4,5}-\d{2,4}-\d{1,2}\b`)
	strengthPattern    = regexp.MustCompile(`(?i)\b\d+\.?\d*[\s\p{Z}]?(mg|mcg|g|ml|%)\b`)
	packageSizePattern = regexp.MustCompile(`(?i)\b\d+[\s\p{Z}]?(tablets|tablet|tabs|capsules|capsule|caps|vials|vial|ampoules|ampules|bottles|bottle|sachets|patches|count|ct|pcs|pieces|units)\b`)
)

// Vocabularies are scanned in order; the first entry found in the text wins.
var (
	dosageForms   = []string{"TABLET", "CAPSULE", "INJECTION", "SOLUTION", "CREAM", "OINTMENT", "DROPS", "SYRUP"}
	manufacturers = []string{"PFIZER", "MERCK", "ABBOTT", "NOVARTIS", "ROCHE", "GSK", "BRISTOL", "JOHNSON", "TEVA"}
)

// Fields mirrors the SKU record fields that can be read off a label.
type Fields struct {
	NDC          string `json:"ndc"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	DosageForm   string `json:"dosage_form"`
	Strength     string `json:"strength"`
	PackageSize  string `json:"package_size"`
}

// Result is the outcome of a single extraction pass.
type Result struct {
	Fields     Fields  `json:"sku_data"`
	Confidence float64 `json:"confidence"`
}

// Extract parses recognized label text. It never fails: fields that cannot be
// found are left empty and the confidence drops accordingly.
func Extract(text string) Result {
	text = norm.NFC.String(text)
	upper := strings.ToUpper(text)

	fields := Fields{
		NDC:          ndcPattern.FindString(text),
		Name:         productName(text),
		Manufacturer: manufacturer(upper),
		DosageForm:   strings.ToLower(firstContained(upper, dosageForms)),
		Strength:     strengthPattern.FindString(text),
		PackageSize:  packageSizePattern.FindString(text),
	}
	return Result{Fields: fields, Confidence: Confidence(fields)}
}

// Confidence is the share of non-blank fields.
func Confidence(f Fields) float64 {
	filled := 0
	for _, v := range []string{f.NDC, f.Name, f.Manufacturer, f.DosageForm, f.Strength, f.PackageSize} {
		if strings.TrimSpace(v) != "" {
			filled++
		}
	}
	return float64(filled) / FieldCount
}

func firstContained(upper string, vocabulary []string) string {
	for _, entry := range vocabulary {
		if strings.Contains(upper, entry) {
			return entry
		}
	}
	return ""
}

func manufacturer(upper string) string {
	hit := firstContained(upper, manufacturers)
	if hit == "" {
		return ""
	}
	return cases.Title(language.English).String(hit)
}

// productName returns the longest run of at least two tokens that starts with
// an upper-case word longer than three characters and continues through
// upper-case or numeric tokens. Manufacturer and strength tokens are not
// excluded from runs.
func productName(text string) string {
	words := strings.Fields(text)
	best := ""
	bestLen := 0
	for i, word := range words {
		if !isUpper(word) || utf8.RuneCountInString(word) <= 3 {
			continue
		}
		j := i + 1
		for j < len(words) && (isUpper(words[j]) || isDigits(words[j])) {
			j++
		}
		if j-i < 2 {
			continue
		}
		candidate := strings.Join(words[i:j], " ")
		if n := utf8.RuneCountInString(candidate); n > bestLen {
			best, bestLen = candidate, n
		}
	}
	return best
}

// isUpper reports whether s has at least one cased letter and every cased
// letter is upper case. Title-case letters such as U+01C5 count as cased but
// not upper.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r) || unicode.IsTitle(r) || unicode.Is(unicode.Other_Lowercase, r):
			return false
		case unicode.IsUpper(r) || unicode.Is(unicode.Other_Uppercase, r):
			cased = true
		}
	}
	return cased
}

// digitNumerals are the non-decimal digits, such as superscripts and circled
// numbers, that still read as a single digit on a label.
var digitNumerals = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00b2, Hi: 0x00b3, Stride: 1},
		{Lo: 0x00b9, Hi: 0x00b9, Stride: 1},
		{Lo: 0x1369, Hi: 0x1371, Stride: 1},
		{Lo: 0x19da, Hi: 0x19da, Stride: 1},
		{Lo: 0x2070, Hi: 0x2070, Stride: 1},
		{Lo: 0x2074, Hi: 0x2079, Stride: 1},
		{Lo: 0x2080, Hi: 0x2089, Stride: 1},
		{Lo: 0x2460, Hi: 0x2468, Stride: 1},
		{Lo: 0x2474, Hi: 0x247c, Stride: 1},
		{Lo: 0x2488, Hi: 0x2490, Stride: 1},
		{Lo: 0x24ea, Hi: 0x24ea, Stride: 1},
		{Lo: 0x24f5, Hi: 0x24fd, Stride: 1},
		{Lo: 0x24ff, Hi: 0x24ff, Stride: 1},
		{Lo: 0x2776, Hi: 0x277e, Stride: 1},
		{Lo: 0x2780, Hi: 0x2788, Stride: 1},
		{Lo: 0x278a, Hi: 0x2792, Stride: 1},
	},
	LatinOffset: 2,
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.Is(digitNumerals, r) {
			return false
		}
	}
	return true
}
