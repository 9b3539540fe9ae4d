package render

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultFontSize = 48

// Args produces the ffmpeg argument list for plan. imagePaths holds one local
// file per plan.Images entry, in order.
func Args(plan *Plan, basePath string, imagePaths []string, output string) []string {
	args := []string{"-hide_banner", "-y", "-i", basePath}
	for _, p := range imagePaths {
		args = append(args, "-i", p)
	}
	graph, out := filterGraph(plan)
	args = append(args, "-filter_complex", graph, "-map", out)
	if plan.IsVideo {
		args = append(args, "-map", "0:a?", "-c:v", "libx264", "-pix_fmt", "yuv420p", "-c:a", "copy")
	} else {
		args = append(args, "-frames:v", "1")
	}
	return append(args, output)
}

func filterGraph(plan *Plan) (string, string) {
	var chains []string
	cur := "[0:v]"
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("[v%d]", n)
	}
	for i, img := range plan.Images {
		src := fmt.Sprintf("[%d:v]", i+1)
		var prep []string
		if img.Width > 0 || img.Height > 0 {
			prep = append(prep, fmt.Sprintf("scale=%d:%d", orAuto(img.Width), orAuto(img.Height)))
		}
		if img.Angle != 0 {
			a := fmt.Sprintf("%s*PI/180", formatFloat(img.Angle))
			prep = append(prep, fmt.Sprintf("rotate=%s:c=none:ow=rotw(%s):oh=roth(%s)", a, a, a))
		}
		if len(prep) > 0 {
			label := fmt.Sprintf("[img%d]", i)
			chains = append(chains, src+strings.Join(prep, ",")+label)
			src = label
		}
		out := next()
		chains = append(chains, fmt.Sprintf("%s%soverlay=%d:%d%s%s", cur, src, img.X, img.Y, enable(img.Window), out))
		cur = out
	}
	for _, t := range plan.Texts {
		out := next()
		chains = append(chains, cur+drawtext(t)+out)
		cur = out
	}
	if len(chains) == 0 {
		out := next()
		chains = append(chains, cur+"null"+out)
		cur = out
	}
	return strings.Join(chains, ";"), cur
}

func drawtext(t TextOverlay) string {
	size := t.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	color := t.Color
	if color == "" {
		color = "white"
	}
	x := strconv.Itoa(t.X)
	switch strings.ToLower(t.Align) {
	case "center":
		x = fmt.Sprintf("%d-text_w/2", t.X)
	case "right":
		x = fmt.Sprintf("%d-text_w", t.X)
	}
	opts := []string{
		"text=" + escapeValue(drawtextEscaper.Replace(t.Text)),
		"x=" + x,
		"y=" + strconv.Itoa(t.Y),
		"fontsize=" + strconv.Itoa(size),
		"fontcolor=" + escapeValue(color),
	}
	if t.Font != "" {
		opts = append(opts, "fontfile="+escapeValue(t.Font))
	}
	return "drawtext=" + strings.Join(opts, ":") + enable(t.Window)
}

func enable(w Window) string {
	if !w.Active() {
		return ""
	}
	return fmt.Sprintf(":enable='between(t,%s,%s)'", formatFloat(w.Start), formatFloat(w.End))
}

// Filter option values are unescaped twice by ffmpeg: once by the graph
// parser and once by the option parser. drawtext text is expanded a third
// time, where % starts a %{...} sequence.
var (
	drawtextEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`)
	optionEscaper   = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper    = strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
		`;`, `\;`,
	)
)

func escapeValue(s string) string {
	return graphEscaper.Replace(optionEscaper.Replace(s))
}

func orAuto(v int) int {
	if v <= 0 {
		return -1
	}
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
