// Package featureflags evaluates the FEATURE_FLAGS rollout list.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags consulted by the forum.
const (
	// LikeNotices sends a "like" notice to a question's author.
	LikeNotices = "like_notices"
	// RealtimeNotices publishes stored notices to connected WebSocket clients.
	RealtimeNotices = "realtime_notices"
)

// Defaults is applied before FEATURE_FLAGS so unset flags keep their shipped value.
const Defaults = LikeNotices + "=on," + RealtimeNotices + "=on"

// Manager evaluates flags defined in a simple key=value list.
// Example: "like_notices=on,realtime_notices=25%"
type Manager struct {
	flags map[string]string
}

// NewManager parses raw on top of Defaults.
func NewManager(raw string) *Manager {
	out := make(map[string]string)
	parseInto(out, Defaults)
	parseInto(out, raw)
	return &Manager{flags: out}
}

func parseInto(out map[string]string, raw string) {
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
}

// Enabled reports whether a flag is on for a given user.
// Values: on/true/1, off/false/0, or N% for a deterministic per-user rollout.
// Percentage rollouts need a non-zero userID.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	switch {
	case err != nil || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of the configured values.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

// Names lists the configured flags in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.flags))
	for name := range m.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
