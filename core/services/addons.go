package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"XPBot/core"

	"github.com/sahilm/fuzzy"
)

const (
	AddonIndexURL    = "https://github.com/ScratchAddons/website-v2/raw/master/data/addons/en.json"
	AddonManifestURL = "https://raw.githubusercontent.com/ScratchAddons/ScratchAddons/master/addons/%s/addon.json"
)

// Addon is an entry of the addon index.
type Addon struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddonCredit struct {
	Name string `json:"name"`
	Link string `json:"link"`
	Note string `json:"note"`
}

// AddonManifest is the subset of an addon.json the /addon command shows.
type AddonManifest struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Credits      []AddonCredit `json:"credits"`
	Tags         []string      `json:"tags"`
	Permissions  []string      `json:"permissions"`
	VersionAdded string        `json:"versionAdded"`
	LatestUpdate *AddonUpdate  `json:"latestUpdate"`
}

type AddonUpdate struct {
	Version         string `json:"version"`
	TemporaryNotice string `json:"temporaryNotice"`
}

// AddonMatch is a search hit. Score is the share of the matched string the
// query covered, in percent.
type AddonMatch struct {
	Addon
	Score int
}

// AddonCatalog loads the addon index once and fetches manifests on demand, caching them.
type AddonCatalog struct {
	client      *http.Client
	indexURL    string
	manifestURL string

	mu        sync.RWMutex
	addons    []Addon
	manifests map[string]*AddonManifest
}

func NewAddonCatalog(indexURL, manifestURL string) *AddonCatalog {
	return &AddonCatalog{
		client:      &http.Client{Timeout: 10 * time.Second},
		indexURL:    indexURL,
		manifestURL: manifestURL,
		manifests:   map[string]*AddonManifest{},
	}
}

// Load fetches the addon index, replacing whatever was loaded before.
func (c *AddonCatalog) Load(ctx context.Context) error {
	var addons []Addon
	if err := c.getJSON(ctx, c.indexURL, &addons); err != nil {
		return fmt.Errorf("failed to load addon index: %w", err)
	}
	c.mu.Lock()
	c.addons = addons
	c.mu.Unlock()
	core.LogInfoF("Loaded %d addons", len(addons))
	return nil
}

// addonNames lets fuzzy search ids and names together: entry i is addon i/2.
type addonNames []Addon

func (a addonNames) String(i int) string {
	if i%2 == 0 {
		return a[i/2].Id
	}
	return a[i/2].Name
}

func (a addonNames) Len() int { return len(a) * 2 }

type addonDescriptions []Addon

func (a addonDescriptions) String(i int) string { return a[i].Description }
func (a addonDescriptions) Len() int            { return len(a) }

// Search returns the best match for query by id or name, falling back to descriptions.
func (c *AddonCatalog) Search(query string) (AddonMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if matches := fuzzy.FindFrom(query, addonNames(c.addons)); len(matches) > 0 {
		return addonMatch(c.addons[matches[0].Index/2], matches[0]), true
	}
	if matches := fuzzy.FindFrom(query, addonDescriptions(c.addons)); len(matches) > 0 {
		return addonMatch(c.addons[matches[0].Index], matches[0]), true
	}
	return AddonMatch{}, false
}

func addonMatch(addon Addon, m fuzzy.Match) AddonMatch {
	score := 100
	if n := len([]rune(m.Str)); n > 0 {
		score = min(100, len(m.MatchedIndexes)*100/n)
	}
	return AddonMatch{Addon: addon, Score: score}
}

// Random picks any addon.
func (c *AddonCatalog) Random() (Addon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.addons) == 0 {
		return Addon{}, false
	}
	return c.addons[rand.Intn(len(c.addons))], true
}

// Manifest returns the manifest of addon id.
func (c *AddonCatalog) Manifest(ctx context.Context, id string) (*AddonManifest, error) {
	c.mu.RLock()
	manifest, ok := c.manifests[id]
	c.mu.RUnlock()
	if ok {
		return manifest, nil
	}

	manifest = &AddonManifest{}
	if err := c.getJSON(ctx, fmt.Sprintf(c.manifestURL, url.PathEscape(id)), manifest); err != nil {
		return nil, fmt.Errorf("failed to load manifest of %s: %w", id, err)
	}
	c.mu.Lock()
	c.manifests[id] = manifest
	c.mu.Unlock()
	return manifest, nil
}

func (c *AddonCatalog) getJSON(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// AddonGroup is the settings page section an addon is listed under.
func (m *AddonManifest) AddonGroup() string {
	has := func(tag string) bool { return slices.Contains(m.Tags, tag) }
	switch {
	case has("popup"):
		return "Extension Popup Features"
	case has("easterEgg"):
		return "Easter Eggs"
	case has("theme"):
		return "Themes"
	case has("community"):
		return "Scratch Website Features"
	}
	return "Scratch Editor Features"
}
