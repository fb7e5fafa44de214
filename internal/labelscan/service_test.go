package labelscan

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxcatalog/rxcatalog/internal/platform/httpx"
)

type fakeEngine struct {
	text  string
	err   error
	calls int
	seen  []byte
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	f.calls++
	f.seen = image
	if f.err != nil {
		return "", f.err
	}
	return f.text, ctx.Err()
}

type slowEngine struct{}

func (slowEngine) Name() string { return "slow" }

func (slowEngine) Recognize(ctx context.Context, _ []byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const ibuprofenLabel = "NDC: 99999-888-77 IBUPROFEN 400mg TABLETS Generic Pharma Corp Strength: 400mg Package Size: 60 tablets"

func TestScanExtractsFields(t *testing.T) {
	engine := &fakeEngine{text: ibuprofenLabel}
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewService(engine, quietLogger(), WithMetrics(metrics))
	img := pngBytes(t)

	res, err := svc.Scan(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, ibuprofenLabel, res.Text)
	assert.Equal(t, "99999-888-77", res.Fields.NDC)
	assert.Equal(t, "tablet", res.Fields.DosageForm)
	assert.InDelta(t, 4.0/6.0, res.Confidence, 1e-9)
	assert.Equal(t, img, engine.seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.scans.WithLabelValues("fake", OutcomeOK)))
}

func TestScanRejectsUndecodableImageBeforeEngine(t *testing.T) {
	engine := &fakeEngine{text: "unused"}
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewService(engine, quietLogger(), WithMetrics(metrics))

	_, err := svc.Scan(context.Background(), []byte("GIF89a-but-not-really"))
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrUpstream)
	assert.Zero(t, engine.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.scans.WithLabelValues("fake", OutcomeBadImage)))
}

func TestScanEngineFailureIsUpstream(t *testing.T) {
	boom := errors.New("tesseract not installed")
	svc := NewService(&fakeEngine{err: boom}, quietLogger())

	_, err := svc.Scan(context.Background(), pngBytes(t))
	assert.ErrorIs(t, err, httpx.ErrUpstream)
	assert.ErrorIs(t, err, boom)
}

func TestScanTimeout(t *testing.T) {
	svc := NewService(slowEngine{}, quietLogger(), WithTimeout(20*time.Millisecond))

	_, err := svc.Scan(context.Background(), pngBytes(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, httpx.ErrUpstream)
}

func TestScanEmptyTextHasZeroConfidence(t *testing.T) {
	svc := NewService(&fakeEngine{text: ""}, quietLogger())

	res, err := svc.Scan(context.Background(), pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Confidence)
}
