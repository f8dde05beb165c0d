package knowledge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/storopack-br/suporte/internal/config"
)

var (
	citationRe  = regexp.MustCompile(`【[^】]*】`)
	blankRunsRe = regexp.MustCompile(`\n{3,}`)

	legacyErrMarkerRe = regexp.MustCompile(`\[VIDEO_E(\d+)\]`)
	simErrMarkerRe    = regexp.MustCompile(`\[SIM_VIDEO_E(\d+)\]`)
)

// videosLocais maps each marker topic to the local path the frontend serves.
var videosLocais = map[string]string{
	"e1":         "/static/erros/e1/",
	"e2":         "/static/erros/e2/",
	"e3":         "/static/erros/e3/",
	"e4":         "/static/erros/e4/",
	"e5":         "/static/erros/e5/",
	"e6":         "/static/erros/e6/",
	"e7":         "/static/erros/e7/",
	"e8":         "/static/erros/e8/",
	"e9":         "/static/erros/e9/",
	"e10":        "/static/erros/e10/",
	"e11":        "/static/erros/e11/",
	"calibracao": "/static/videos/calibracao/",
	"selagem":    "/static/videos/selagem/",
}

// PostProcessor normalizes assistant output before it reaches the customer.
type PostProcessor struct {
	mode config.MarkerMode
}

func NewPostProcessor(mode config.MarkerMode) *PostProcessor {
	return &PostProcessor{mode: mode}
}

// Clean strips OpenAI citation annotations and markdown glyphs and collapses
// runs of blank lines. Clean is idempotent.
func Clean(texto string) string {
	if texto == "" {
		return ""
	}
	texto = citationRe.ReplaceAllString(texto, "")
	for _, glyph := range []string{"**", "*", "```", "###", "##", "#"} {
		texto = strings.ReplaceAll(texto, glyph, "")
	}
	texto = blankRunsRe.ReplaceAllString(texto, "\n\n")
	return strings.TrimSpace(texto)
}

// RewriteMarkers normalizes video-reference markers. In passthrough mode the
// frontend receives [SIM_VIDEO_EX] tokens and renders the player itself; the
// old [VIDEO_X] marker generation is converted, topic markers are dropped.
// In inline mode every marker is expanded in place into a "see video" block.
func (p *PostProcessor) RewriteMarkers(texto string) string {
	if texto == "" {
		return ""
	}
	texto = legacyErrMarkerRe.ReplaceAllString(texto, "[SIM_VIDEO_E$1]")

	switch p.mode {
	case config.MarkerInline:
		texto = strings.ReplaceAll(texto, "[VIDEO_CALIBRACAO]", "[SIM_VIDEO_CALIBRACAO]")
		texto = strings.ReplaceAll(texto, "[VIDEO_SELAGEM]", "[SIM_VIDEO_SELAGEM]")
		texto = simErrMarkerRe.ReplaceAllStringFunc(texto, func(m string) string {
			n := simErrMarkerRe.FindStringSubmatch(m)[1]
			return videoBlock("Erro E"+n, "e"+n)
		})
		texto = strings.ReplaceAll(texto, "[SIM_VIDEO_CALIBRACAO]", videoBlock("Calibração", "calibracao"))
		texto = strings.ReplaceAll(texto, "[SIM_VIDEO_SELAGEM]", videoBlock("Selagem", "selagem"))
	default:
		texto = strings.ReplaceAll(texto, "[VIDEO_CALIBRACAO]", "")
		texto = strings.ReplaceAll(texto, "[VIDEO_SELAGEM]", "")
	}

	return strings.TrimSpace(texto)
}

func videoBlock(titulo, chave string) string {
	path, ok := videosLocais[chave]
	if !ok {
		return ""
	}
	return fmt.Sprintf("Veja o vídeo: %s\n%s", titulo, path)
}

// InjectMarker appends the video marker for the highest-numbered error code the
// text mentions, when the assistant referenced a code without its marker.
// Scanning from E11 down takes the most severe match first and also keeps
// "erro e11" from matching as "erro e1".
func InjectMarker(texto string) string {
	if strings.Contains(texto, "[SIM_VIDEO_E") || strings.Contains(texto, "[VIDEO_E") {
		return texto
	}
	lower := strings.ToLower(texto)
	for i := 11; i >= 1; i-- {
		codigo := fmt.Sprintf("e%d", i)
		if strings.Contains(lower, "erro "+codigo) ||
			strings.Contains(lower, codigo+" ") ||
			strings.Contains(lower, codigo+"-") ||
			strings.Contains(lower, codigo+":") {
			return fmt.Sprintf("%s\n\n[SIM_VIDEO_E%d]", texto, i)
		}
	}
	return texto
}
