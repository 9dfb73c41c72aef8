package usage

import (
	"hash/fnv"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// presetColors pins well-known models to fixed chart colors so they look the
// same across every dashboard.
var presetColors = map[string]string{
	"gpt-4o":            "#10a37f",
	"gpt-4o-mini":       "#4cc38a",
	"gpt-4.1":           "#1a7f64",
	"o3":                "#0d8a6a",
	"claude-3-5-sonnet": "#cc785c",
	"claude-3-5-haiku":  "#d4a27f",
	"claude-3-opus":     "#b0573b",
	"gemini-1.5-pro":    "#4285f4",
	"gemini-1.5-flash":  "#669df6",
	"deepseek-chat":     "#556bf0",
	"deepseek-reasoner": "#7d8df5",
	"qwen-max":          "#6236ff",
	"glm-4":             "#2f54eb",
}

// ColorAssigner hands out chart colors for model names. Assignments are
// sticky for the assigner's lifetime: the same name always maps to the same
// color within a session, and the hash fallback is deterministic across
// sessions.
type ColorAssigner struct {
	mu       sync.Mutex
	assigned map[string]string
}

// NewColorAssigner creates an empty assigner.
func NewColorAssigner() *ColorAssigner {
	return &ColorAssigner{assigned: make(map[string]string)}
}

// Assign returns the color map for the given model names.
func (a *ColorAssigner) Assign(models []string) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]string, len(models))
	for _, m := range models {
		if c, ok := presetColors[m]; ok {
			a.assigned[m] = c
		} else if _, ok := a.assigned[m]; !ok {
			a.assigned[m] = hashColor(m)
		}
		out[m] = a.assigned[m]
	}
	return out
}

// hashColor derives a stable, readable color from a model name.
func hashColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	hue := float64(h.Sum32() % 360)
	return colorful.Hsl(hue, 0.62, 0.58).Hex()
}
