package types

import (
	"strconv"

	"github.com/MissingCore/tagscan/internal/binary"
)

// Collector accumulates tag values for a single Extract call. It is the one
// place the three data-model invariants that cut across every container
// format live: a value is only ever stored for a key the caller requested,
// first occurrence wins, and numeric fields fall back to their raw string
// when they don't parse.
type Collector struct {
	requested *RequestedTags
	values    map[TagKey]Value
}

// NewCollector builds a Collector bound to a single RequestedTags.
func NewCollector(requested *RequestedTags) *Collector {
	return &Collector{
		requested: requested,
		values:    make(map[TagKey]Value, requested.Len()),
	}
}

func (c *Collector) has(key TagKey) bool {
	_, ok := c.values[key]
	return ok
}

// StoreString stores a textual value for key, if key was requested and has
// not already been populated.
func (c *Collector) StoreString(key TagKey, value string) {
	if !c.requested.Has(key) || c.has(key) {
		return
	}
	c.values[key] = value
}

// StoreInt stores a numeric value directly, for fields that are already
// integers in their native encoding (the ID3v1.1 track byte, MP4's trkn).
func (c *Collector) StoreInt(key TagKey, value int64) {
	if !c.requested.Has(key) || c.has(key) {
		return
	}
	c.values[key] = value
}

// StoreArtwork stores the artwork data URI. mime must already be the short
// form ("image/png", "image/jpeg").
func (c *Collector) StoreArtwork(mime string, data []byte) {
	if !c.requested.Has(TagArtwork) || c.has(TagArtwork) {
		return
	}
	c.values[TagArtwork] = dataURI(mime, data)
}

// StoreTrack stores a track-number field. The part of raw before any "/"
// separator becomes an int64 when it parses as a non-negative integer,
// otherwise the original raw string is preserved.
func (c *Collector) StoreTrack(raw string) {
	if !c.requested.Has(TagTrack) || c.has(TagTrack) {
		return
	}
	numerator := raw
	for i := 0; i < len(raw); i++ {
		if raw[i] == '/' {
			numerator = raw[:i]
			break
		}
	}
	c.values[TagTrack] = numericOrRaw(numerator, raw)
}

// StoreYear stores a year field. raw is scanned for the first run of four
// consecutive decimal digits, which becomes an int64; if none is found the
// original raw string is preserved.
func (c *Collector) StoreYear(raw string) {
	if !c.requested.Has(TagYear) || c.has(TagYear) {
		return
	}
	if digits := firstFourDigits(raw); digits != "" {
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			c.values[TagYear] = n
			return
		}
	}
	c.values[TagYear] = raw
}

// Satisfied reports whether every requested key has been populated. A
// parser checks this after every store to implement early exit.
func (c *Collector) Satisfied() bool {
	for _, k := range c.requested.Keys() {
		if !c.has(k) {
			return false
		}
	}
	return true
}

// Finish returns the metadata map with every requested key present —
// populated keys hold their value, unpopulated ones hold nil.
func (c *Collector) Finish() map[TagKey]Value {
	out := make(map[TagKey]Value, c.requested.Len())
	for _, k := range c.requested.Keys() {
		if v, ok := c.values[k]; ok {
			out[k] = v
		} else {
			out[k] = nil
		}
	}
	return out
}

func numericOrRaw(numerator, raw string) Value {
	trimmed := trimSpace(numerator)
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil && n >= 0 {
		return n
	}
	return raw
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// firstFourDigits returns the first run of four consecutive ASCII decimal
// digits in s, or "" if there is none.
func firstFourDigits(s string) string {
	start, run := -1, 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start == -1 {
				start = i
			}
			run++
			if run == 4 {
				return s[start : i+1]
			}
		} else {
			start, run = -1, 0
		}
	}
	return ""
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + binary.Base64Encode(data)
}
