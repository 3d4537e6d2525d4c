package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  texto   plano\n", "texto plano"},
		{"<p>Hola <b>mundo</b></p><script>x()</script>", "Hola mundo"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<ul><li>uno</li> <li>dos</li></ul>", "uno dos"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainText(tt.in), tt.in)
	}
}

func TestTrimTruncationMarker(t *testing.T) {
	assert.Equal(t, "El Senado aprobó la ley", TrimTruncationMarker("El Senado aprobó la ley… [+2345 chars]"))
	assert.Equal(t, "Texto", TrimTruncationMarker("Texto [+12 chars]"))
	assert.Equal(t, "Sin marca", TrimTruncationMarker("Sin marca"))
}

func TestExtractFullArticle(t *testing.T) {
	body := strings.Repeat("Párrafo con suficiente contenido para contar como cuerpo. ", 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>T</title></head><body>
			<h1>El Senado vota</h1>
			<article><p>%s</p><p>Lee también: otra noticia que no interesa aquí</p><p>%s</p><p>corto</p></article>
		</body></html>`, body, body)
	}))
	defer srv.Close()

	e := NewExtractor(time.Second, nil)
	got, err := e.ExtractFullArticle(context.Background(), srv.URL+"/noticia")
	require.NoError(t, err)

	assert.Equal(t, "El Senado vota", got.Title)
	assert.Equal(t, strings.TrimSpace(body)+"\n\n"+strings.TrimSpace(body), got.Content)
}

func TestExtractFullArticleHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewExtractor(time.Second, nil).ExtractFullArticle(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "HTTP error: 404")
}
