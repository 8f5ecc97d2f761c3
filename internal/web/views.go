package web

import (
	"strconv"
	"time"

	"go-swmon/internal/models"

	"github.com/gofiber/template/html/v2"
)

// NewEngine loads the HTML templates in dir with the helpers they use.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("mod", func(a, b int) int { return a % b })
	engine.AddFunc("state", switchState)
	engine.AddFunc("count", func(n *int) string {
		if n == nil {
			return "-"
		}
		return strconv.Itoa(*n)
	})
	engine.AddFunc("since", func(t *time.Time) string {
		if t == nil {
			return "never"
		}
		return t.Format("2006-01-02 15:04:05")
	})
	return engine
}

// switchState is "up", "down" or "unknown" for a dashboard row.
func switchState(v models.SwitchView) string {
	switch {
	case v.Reachable == nil:
		return "unknown"
	case *v.Reachable:
		return "up"
	default:
		return "down"
	}
}
