// Package state implements the OAuth state-parameter encoding.
//
// The provider redirect offers exactly one opaque channel (`state`) to carry
// application context through the round trip. Client flows pack the
// onboarding link token and the encoded scope selection into it:
//
//	<linkToken> "|" <base64(JSON boolean record)>
//
// The encoding is reversible, order-independent in meaning, and fails soft:
// a corrupt selection decodes to "nothing selected" instead of stranding the
// user on an error page. Admin flows use a signed JWT state instead (see
// signer.go); those carry no link token.
package state

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"

	"github.com/clientlinkhq/clientlink/internal/catalog"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
)

// Delimiter separates the link token from the encoded selection.
const Delimiter = "|"

// Codec encodes and decodes option selections for one platform. The short
// keys keep the state parameter well under URL length limits.
type Codec struct {
	platform string
	// option id -> short key inside the JSON record
	keys map[string]string
	// reverse map, built once
	ids map[string]string
	// canonical id order for deterministic decode output
	order []string
}

// metaKeys maps the Meta option ids to their historical short keys. Other
// platforms use the option id itself; their ids are already short.
var metaKeys = map[string]string{
	"ad_account":           "ad",
	"page_all_permissions": "page",
	"instagram_account":    "instagram",
	"catalog":              "catalog",
	"dataset":              "dataset",
}

// NewCodec builds a codec for a platform from its catalog options.
func NewCodec(platform string, cat *catalog.Catalog) *Codec {
	c := &Codec{
		platform: strings.ToLower(platform),
		keys:     make(map[string]string),
		ids:      make(map[string]string),
	}
	for _, o := range cat.Options(platform) {
		key := o.ID
		if c.platform == catalog.PlatformMeta {
			if short, ok := metaKeys[o.ID]; ok {
				key = short
			}
		}
		c.keys[o.ID] = key
		c.ids[key] = o.ID
		c.order = append(c.order, o.ID)
	}
	return c
}

// EncodeSelection serializes selected option ids into a URL-safe reversible
// token: base64 of a JSON record with one boolean per known option.
// Deterministic regardless of input order; unknown ids are dropped.
func (c *Codec) EncodeSelection(selected []string) string {
	sel := make(map[string]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}
	record := make(map[string]bool, len(c.order))
	for _, id := range c.order {
		record[c.keys[id]] = sel[id]
	}
	// json.Marshal sorts map keys, so equal selections encode equally.
	b, _ := json.Marshal(record)
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeSelection is the inverse of EncodeSelection. On malformed input
// (bad base64, bad JSON) it logs and returns an empty selection; it never
// returns an error. Unknown keys are ignored. Output follows catalog order.
func (c *Codec) DecodeSelection(ctx context.Context, token string) []string {
	if strings.TrimSpace(token) == "" {
		return []string{}
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		// Tolerate tokens that lost their padding in transit (copy-paste,
		// log truncation) before giving up.
		raw, err = base64.RawStdEncoding.DecodeString(token)
	}
	if err != nil {
		logger.From(ctx).Warn("state selection not base64, treating as empty",
			logger.Platform(c.platform), logger.Err(err))
		return []string{}
	}
	var record map[string]bool
	if err := json.Unmarshal(raw, &record); err != nil {
		logger.From(ctx).Warn("state selection not valid JSON, treating as empty",
			logger.Platform(c.platform), logger.Err(err))
		return []string{}
	}
	out := []string{}
	for _, id := range c.order {
		if record[c.keys[id]] {
			out = append(out, id)
		}
	}
	return out
}

// KnownIDs returns the option ids this codec understands, sorted.
func (c *Codec) KnownIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	sort.Strings(out)
	return out
}

// Join packs a link token and an encoded selection into one state value.
// An empty selection yields just the token, matching links issued before
// per-option selection existed.
func Join(linkToken, encodedSelection string) string {
	if encodedSelection == "" {
		return linkToken
	}
	return linkToken + Delimiter + encodedSelection
}

// Split separates a state value into link token and encoded selection.
// The selection part is optional; extra delimiters stay in the selection
// portion untouched.
func Split(s string) (linkToken, encodedSelection string) {
	token, rest, found := strings.Cut(s, Delimiter)
	if !found {
		return token, ""
	}
	return token, rest
}
