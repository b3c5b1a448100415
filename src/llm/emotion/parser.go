// Package emotion extracts the mood tag a suspect appends to every reply.
package emotion

import (
	"regexp"
	"strings"

	"ai_detective/src/logger"
)

// DefaultTag is reported when a reply carries no tag at all
const DefaultTag = "default"

var (
	// models sometimes echo prompt formatting such as {'='*60}
	artifactPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\{'='[*]\d+\}`),
		regexp.MustCompile(`\{["']=["'][*]\d+\}`),
	}
	tagAtEnd = regexp.MustCompile(`\[([^\]]+)\]\s*["']?\s*$`)
	tagAny   = regexp.MustCompile(`\[([^\]]+)\]`)
)

// ImageMapper resolves a suspect's mood to a portrait filename
type ImageMapper interface {
	MapEmotionToImage(id int, tag string) (string, bool)
	DefaultImage(id int) string
}

// Result is a parsed reply
type Result struct {
	Image string // portrait filename
	Text  string // reply with the tag removed
	Tag   string // extracted mood, or DefaultTag
	Valid bool   // tag was one of the suspect's moods
}

// Parse finds the mood tag of a reply, preferring one at the very end and
// otherwise the last one anywhere, and maps it to a portrait.
func Parse(mapper ImageMapper, suspectID int, response string) Result {
	response = CleanArtifacts(response)

	loc := tagAtEnd.FindStringSubmatchIndex(response)
	if loc == nil {
		all := tagAny.FindAllStringSubmatchIndex(response, -1)
		if len(all) > 0 {
			loc = all[len(all)-1]
			logger.Debug().Int("suspect", suspectID).Msg("Found emotion tag mid-response")
		}
	}

	if loc == nil {
		img := mapper.DefaultImage(suspectID)
		logger.Warn().Int("suspect", suspectID).Str("image", img).Msg("No emotion tag found in response")
		return Result{Image: img, Text: response, Tag: DefaultTag}
	}

	tag := strings.TrimSpace(response[loc[2]:loc[3]])
	cleaned := strings.TrimSpace(response[:loc[0]] + response[loc[1]:])
	img, valid := mapper.MapEmotionToImage(suspectID, tag)

	logger.Debug().
		Int("suspect", suspectID).
		Str("emotion", tag).
		Str("image", img).
		Bool("valid", valid).
		Msg("Emotion detected")

	return Result{Image: img, Text: cleaned, Tag: tag, Valid: valid}
}

// CleanArtifacts strips prompt-formatting debris and surrounding whitespace
func CleanArtifacts(response string) string {
	for _, re := range artifactPatterns {
		response = re.ReplaceAllString(response, "")
	}
	return strings.TrimSpace(response)
}

// Strip returns the reply text without its tag
func Strip(mapper ImageMapper, suspectID int, response string) string {
	return Parse(mapper, suspectID, response).Text
}
