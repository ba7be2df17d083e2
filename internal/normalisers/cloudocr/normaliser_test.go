package cloudocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

type fakeTranscriber struct {
	text        string
	err         error
	mimeType    string
	instruction string
	content     []byte
}

func (f *fakeTranscriber) Transcribe(_ context.Context, content []byte, mimeType, instruction string) (string, error) {
	f.content = content
	f.mimeType = mimeType
	f.instruction = instruction
	return f.text, f.err
}

func (f *fakeTranscriber) Close() error { return nil }

func TestMetadata(t *testing.T) {
	n := New(nil)
	assert.Equal(t, "cloud-ocr", n.Name())
	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 10, n.Priority())
}

func TestNormalise(t *testing.T) {
	tr := &fakeTranscriber{text: "IN THE HIGH COURT OF DELHI"}
	raw := domain.NewRawDocument("petition.pdf", domain.MIMETypePDF, []byte("%PDF-1.7"))

	result, err := New(tr).Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"IN THE HIGH COURT OF DELHI"}, result.Pages)
	assert.Equal(t, Instruction, tr.instruction)
	assert.Equal(t, "application/pdf", tr.mimeType)
	assert.Equal(t, []byte("%PDF-1.7"), tr.content)
}

func TestNormalise_TranscriberError(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("quota exceeded")}
	raw := domain.NewRawDocument("petition.pdf", "", []byte("%PDF-1.7"))

	_, err := New(tr).Normalise(context.Background(), raw)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNormalise_NotConfigured(t *testing.T) {
	_, err := New(nil).Normalise(context.Background(), domain.NewRawDocument("a.pdf", "", []byte("x")))
	assert.ErrorIs(t, err, ErrNoTranscriber)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New(&fakeTranscriber{}).Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
