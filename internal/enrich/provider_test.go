package enrich

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testProvider(url string) *Provider {
	return &Provider{
		apiURL: url,
		client: &http.Client{Timeout: time.Second},
		log:    logrus.WithField("component", "enrich"),
	}
}

func TestEnrichFillsCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("word"); got != "tiger" {
			t.Errorf("word = %q, want tiger", got)
		}
		w.Write([]byte(`{"translation":"老虎","image":"img.png","audio":"tiger.mp3"}`))
	}))
	defer srv.Close()

	card := testProvider(srv.URL).Enrich("tiger")
	if card.Word != "tiger" || card.Translation != "老虎" || card.Image != "img.png" || card.Audio != "tiger.mp3" {
		t.Fatalf("card = %+v", card)
	}
}

func TestEnrichDegradesGracefully(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	// Server errors, unreachable hosts, and a nil provider all degrade to
	// a bare card; enrichment never propagates a failure.
	for name, p := range map[string]*Provider{
		"server error": testProvider(srv.URL),
		"unreachable":  testProvider("http://127.0.0.1:1"),
		"nil provider": nil,
	} {
		card := p.Enrich("tiger")
		if card.Word != "tiger" || card.Translation != "" {
			t.Fatalf("%s: card = %+v, want bare card", name, card)
		}
	}
}
