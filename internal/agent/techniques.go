package agent

import (
	"fmt"
	"regexp"
	"strings"

	"server/internal/domain"
)

// namedTechnique detects one prompt engineering technique by the vocabulary it
// introduces. Only text that is new relative to the original prompt counts.
type namedTechnique struct {
	name    string
	pattern *regexp.Regexp
}

var techniquePatterns = []namedTechnique{
	{"cinematic_language", regexp.MustCompile(`(?i)cinematic|camera|shot|angle`)},
	{"lighting_details", regexp.MustCompile(`(?i)light|lighting|glow|illuminat`)},
	{"emotional_tone", regexp.MustCompile(`(?i)atmospher|mood|feeling|emotion`)},
	{"color_description", regexp.MustCompile(`(?i)color|palette|hue|tone`)},
	{"texture_details", regexp.MustCompile(`(?i)texture|detail|surface`)},
	{"motion_description", regexp.MustCompile(`(?i)motion|movement|flowing|moving`)},
}

// ExtractTechniques names the techniques an enhancement applied on top of the
// original prompt.
func ExtractTechniques(original, enhanced string) []string {
	var techniques []string
	if len(enhanced) > 2*len(original) {
		techniques = append(techniques, "detailed_expansion")
	}
	for _, t := range techniquePatterns {
		if t.pattern.MatchString(enhanced) && !t.pattern.MatchString(original) {
			techniques = append(techniques, t.name)
		}
	}
	return techniques
}

// buildLearningContext renders accumulated feedback as an extra system
// message. An agent with no memories gets none.
func buildLearningContext(ins *domain.AgentInsights) string {
	if ins == nil || ins.TotalMemories == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n--- LEARNING CONTEXT ---\n")
	fmt.Fprintf(&b, "You have generated %d prompts before.\n", ins.TotalMemories)
	fmt.Fprintf(&b, "Success rate: %d liked, %d disliked.\n", ins.LikedCount, ins.DislikedCount)
	if len(ins.CommonLikedPatterns) > 0 {
		b.WriteString("\nUSERS LIKED when you used:\n")
		for _, p := range limitPatterns(ins.CommonLikedPatterns) {
			b.WriteString("- " + p + "\n")
		}
	}
	if len(ins.CommonDislikedPatterns) > 0 {
		b.WriteString("\nUSERS DISLIKED when you used:\n")
		for _, p := range limitPatterns(ins.CommonDislikedPatterns) {
			b.WriteString("- " + p + "\n")
		}
	}
	b.WriteString("\nApply this learning to the current prompt.")
	return b.String()
}

func limitPatterns(patterns []string) []string {
	if len(patterns) > 5 {
		return patterns[:5]
	}
	return patterns
}
