package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// createTestDOCX builds a minimal DOCX archive around a document body.
func createTestDOCX(t *testing.T, body string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)

	if body != "" {
		doc, err := w.Create(documentPart)
		require.NoError(t, err)
		_, err = doc.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func rawDOCX(content []byte) *domain.RawDocument {
	return domain.NewRawDocument("petition.docx", "", content)
}

func TestMetadata(t *testing.T) {
	n := New()
	assert.Equal(t, "docx", n.Name())
	assert.Equal(t, []string{domain.MIMETypeDOCX}, n.SupportedMIMETypes())
	assert.Equal(t, 80, n.Priority())
}

func TestNormalise_Paragraphs(t *testing.T) {
	body := `<w:p><w:r><w:t>IN THE HIGH COURT</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">The petitioner </w:t></w:r><w:r><w:t>submits:</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>1.</w:t><w:tab/><w:t>Bail</w:t><w:br/><w:t>granted</w:t></w:r></w:p>`

	result, err := New().Normalise(context.Background(), rawDOCX(createTestDOCX(t, body)))
	require.NoError(t, err)

	assert.Equal(t, []string{"IN THE HIGH COURT\nThe petitioner submits:\n1.\tBail\ngranted"}, result.Pages)
}

func TestNormalise_PageBreaks(t *testing.T) {
	body := `<w:p><w:r><w:t>Facts</w:t></w:r></w:p>` +
		`<w:p><w:r><w:br w:type="page"/></w:r></w:p>` +
		`<w:p><w:r><w:t>Grounds</w:t></w:r></w:p>` +
		`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`

	result, err := New().Normalise(context.Background(), rawDOCX(createTestDOCX(t, body)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Facts", "Grounds"}, result.Pages)
}

func TestNormalise_TableCells(t *testing.T) {
	body := `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Section 302</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:p><w:r><w:t>Murder</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`

	result, err := New().Normalise(context.Background(), rawDOCX(createTestDOCX(t, body)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Section 302\nMurder"}, result.Pages)
}

func TestNormalise_EmptyBody(t *testing.T) {
	result, err := New().Normalise(context.Background(), rawDOCX(createTestDOCX(t, `<w:p/>`)))
	require.NoError(t, err)
	assert.Equal(t, []string{""}, result.Pages)
}

func TestNormalise_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"not a zip", []byte("%PDF-1.4")},
		{"missing document part", createTestDOCX(t, "")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := New().Normalise(context.Background(), rawDOCX(tc.content))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, result)
		})
	}
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
