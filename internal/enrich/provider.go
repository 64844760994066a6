// Package enrich supplies word content: an HTTP provider that fills in
// translation/image/audio for a raw word, and the fallback generator behind
// the patrol action.
package enrich

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/kidquest/pkg/models"
)

// Provider looks a word up against a dictionary endpoint. Enrichment is
// strictly best-effort: any failure degrades to empty fields, never to an
// error the caller has to handle.
type Provider struct {
	apiURL string
	client *http.Client
	log    *logrus.Entry
}

// NewProvider builds a provider from the WORD_API_URL environment
// variable. Returns nil when no endpoint is configured, which callers treat
// as "no enrichment".
func NewProvider() *Provider {
	apiURL := os.Getenv("WORD_API_URL")
	if apiURL == "" {
		return nil
	}
	return &Provider{
		apiURL: apiURL,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    logrus.WithField("component", "enrich"),
	}
}

// wordResponse is the endpoint's answer shape.
type wordResponse struct {
	Translation string `json:"translation"`
	Image       string `json:"image"`
	Audio       string `json:"audio"`
}

// Enrich returns a flashcard for word. The word itself is always set; the
// remaining fields are whatever the endpoint provided.
func (p *Provider) Enrich(word string) models.Flashcard {
	card := models.Flashcard{Word: word}
	if p == nil {
		return card
	}

	resp, err := p.client.Get(fmt.Sprintf("%s?word=%s", p.apiURL, url.QueryEscape(word)))
	if err != nil {
		p.log.WithError(err).WithField("word", word).Debug("enrichment request failed")
		return card
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.log.WithField("status", resp.StatusCode).WithField("word", word).Debug("enrichment rejected")
		return card
	}

	var body wordResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		p.log.WithError(err).WithField("word", word).Debug("enrichment decode failed")
		return card
	}

	card.Translation = body.Translation
	card.Image = body.Image
	card.Audio = body.Audio
	return card
}
