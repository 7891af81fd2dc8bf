// SPDX-License-Identifier: MPL-2.0

// Package fetch downloads the upstream exercise metrics dataset and
// caches it on disk as YAML.
package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"exbuild/internal/config"
)

// EULA is shown before the first download. The dataset is openly
// published on the upstream website; the notice keeps the retrieval
// within the legal and ethical field, requiring explicit consent.
const EULA = `This tool computes metrics from data provided openly and widely
accessible on the upstream website, then incorporates the evaluated
metrics into our dataset.

To accept & confirm downloading the dataset, enter YES below.`

// The website name may itself be copyright-protected, so it is never
// stored as-is. It is reconstructed on the fly from its
// base64(rot13(name)) form; see EncUnwrap.
const websiteEnc = "ZmdlcmF0Z3V5cmlyeS5wYno="

const endpointTemplate = "%s/api/exercises?limit=%d&exercise.fields=%s&standard=%t"

// standardFields mirrors the field set and order the website's own
// public requests use. Only standard entries carry the data we need.
var standardFields = []string{"category", "name_url", "bodypart", "count", "aliases", "icon_url"}

// limitStep is the granularity the website pages its data at; requests
// round the limit up to a multiple of it.
const limitStep = 32

// Entry is one transformed dataset record, keyed externally by the
// upstream id.
type Entry struct {
	Name       string   `yaml:"name"`
	Altnames   []string `yaml:"altnames,omitempty"`
	Number     int      `yaml:"number"`
	Category   string   `yaml:"category"`
	Muscles    string   `yaml:"muscles"`
	IconURLRel string   `yaml:"icon_url_rel"`
}

// DatasetError reports a failed or refused dataset retrieval.
type DatasetError struct {
	Reason string
}

func (e *DatasetError) Error() string { return "dataset: " + e.Reason }

// EncUnwrap reconstructs a string from its base64(rot13(s)) form.
func EncUnwrap(encstr string) (string, error) {
	rot, err := base64.StdEncoding.DecodeString(encstr)
	if err != nil {
		return "", fmt.Errorf("unwrap outer: %w", err)
	}
	return rot13(string(rot)), nil
}

func rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}, s)
}

// Grabber retrieves the raw dataset on behalf of the user and stores
// it at the configured cache path.
type Grabber struct {
	cfg     config.FetchConfig
	log     *log.Logger
	client  *http.Client
	website string
	baseURL string

	// Prompt asks for EULA confirmation and returns the raw answer.
	// Defaults to reading a line from stdin.
	Prompt func(question string) (string, error)
}

// NewGrabber decodes the endpoint host and prepares the HTTP client.
func NewGrabber(cfg config.FetchConfig, logger *log.Logger) (*Grabber, error) {
	website, err := EncUnwrap(websiteEnc)
	if err != nil {
		return nil, err
	}
	return &Grabber{
		cfg:     cfg,
		log:     logger,
		client:  &http.Client{Timeout: 30 * time.Second},
		website: website,
		baseURL: "https://" + website,
		Prompt:  stdinPrompt,
	}, nil
}

// RoundLimit rounds n up to the website's paging step.
func RoundLimit(n int) int {
	return limitStep * int(math.Ceil(float64(n)/float64(limitStep)))
}

// URL builds the retrieval url for the given entry limit.
func (g *Grabber) URL(limit int) string {
	return fmt.Sprintf(endpointTemplate,
		g.baseURL, RoundLimit(limit), strings.Join(standardFields, ","), true)
}

// request performs one GET with browser-like headers, retried with
// exponential backoff, and returns the response body.
func (g *Grabber) request(ctx context.Context, limit int) ([]byte, error) {
	reqURL := g.URL(limit)

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("Referer", "https://"+g.website+"/strength-standards")

		resp, err := g.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("request dataset: %w", err)
	}
	return body, nil
}

// GetData acquires and transforms the dataset. A zero limit means
// everything: a probe request discovers the total first.
func (g *Grabber) GetData(ctx context.Context, limit int) (map[string]Entry, error) {
	if limit < 0 {
		return nil, &DatasetError{Reason: fmt.Sprintf("negative limit %d", limit)}
	}
	getFull := limit == 0
	if getFull {
		probe, err := g.request(ctx, 64)
		if err != nil {
			return nil, err
		}
		limit = int(gjson.GetBytes(probe, "meta.count").Int())
		if limit == 0 {
			return nil, &DatasetError{Reason: "probe response carries no meta.count"}
		}
	}

	body, err := g.request(ctx, limit)
	if err != nil {
		return nil, err
	}
	res := transform(body)

	if getFull {
		if want := int(gjson.GetBytes(body, "meta.count").Int()); len(res) != want {
			return nil, &DatasetError{Reason: fmt.Sprintf("got %d entries, website reports %d", len(res), want)}
		}
	}
	return res, nil
}

// transform reshapes raw response entries into the stored form, keyed
// by the upstream name_url id.
func transform(body []byte) map[string]Entry {
	res := make(map[string]Entry)
	gjson.GetBytes(body, "data").ForEach(func(_, raw gjson.Result) bool {
		ent := Entry{
			Name:       raw.Get("name").String(),
			Number:     int(raw.Get("count").Int()),
			Category:   raw.Get("category").String(),
			Muscles:    raw.Get("bodypart").String(),
			IconURLRel: relativeURL(raw.Get("icon_url").String()),
		}
		for _, alias := range raw.Get("aliases").Array() {
			ent.Altnames = append(ent.Altnames, alias.String())
		}
		res[raw.Get("name_url").String()] = ent
		return true
	})
	return res
}

// relativeURL strips scheme and host from an absolute url.
func relativeURL(abs string) string {
	u, err := url.Parse(abs)
	if err != nil {
		return abs
	}
	u.Scheme = ""
	u.Host = ""
	return u.String()
}

// EnsureRaw makes sure the raw dataset cache exists, downloading it
// when missing or forced. Returns true when an existing cache was
// reused. The EULA must be accepted before the first download unless
// autoAccept is set.
func (g *Grabber) EnsureRaw(ctx context.Context, force, autoAccept bool) (bool, error) {
	if _, err := os.Stat(g.cfg.CacheFile); err == nil && !force {
		g.log.Info("Using existing raw dataset", "file", g.cfg.CacheFile)
		return true, nil
	}

	if autoAccept {
		g.log.Info("EULA accepted explicitly")
	} else {
		answer, err := g.Prompt(EULA + "\nBegin download? [YES/NO]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "yes":
		case "no":
			return false, &DatasetError{Reason: "EULA rejected"}
		default:
			return false, &DatasetError{Reason: "only YES/NO are accepted"}
		}
	}

	data, err := g.GetData(ctx, g.cfg.Limit)
	if err != nil {
		return false, err
	}
	if err := WriteCache(g.cfg.CacheFile, data); err != nil {
		return false, err
	}
	g.log.Info("Raw dataset written", "file", g.cfg.CacheFile, "exercises", len(data))
	return false, nil
}

// WriteCache stores the dataset as YAML behind an updated-at comment
// header, entries sorted by id.
func WriteCache(path string, data map[string]Entry) error {
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "# updated-at: %s\n", time.Now().UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "# exercises: %d\n", len(data))

	var doc yaml.Node
	doc.Kind = yaml.MappingNode
	for _, id := range ids {
		var key, val yaml.Node
		key.SetString(id)
		if err := val.Encode(data[id]); err != nil {
			return fmt.Errorf("encode entry %s: %w", id, err)
		}
		doc.Content = append(doc.Content, &key, &val)
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	b.Write(out)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// LoadCache reads a stored dataset back.
func LoadCache(path string) (map[string]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	var data map[string]Entry
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse cache %s: %w", path, err)
	}
	return data, nil
}

func stdinPrompt(question string) (string, error) {
	fmt.Print(question)
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return "", err
	}
	return answer, nil
}
