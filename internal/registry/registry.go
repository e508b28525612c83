// Package registry maps model identifiers to provider invocation specs.
// Resolution never fails: unknown identifiers fall back to a passthrough spec
// so new provider models work without a code change.
package registry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"server/internal/domain"
)

// Spec is one resolvable generation target.
type Spec struct {
	Key         string
	Model       string
	Name        string
	Type        string
	Description string
	BuildInput  func(prompt string, params map[string]any) map[string]any
}

// CatalogEntry is the public shape of one registry row.
type CatalogEntry struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Model       string `json:"model"`
	Description string `json:"description"`
}

var titleCaser = cases.Title(language.English)

var specs = []Spec{
	{
		Key:         "seedream-4",
		Model:       "bytedance/seedream-4",
		Name:        "Seedream 4",
		Type:        domain.ContentTypeImage,
		Description: "High-resolution image generation, 2K output",
		BuildInput: func(prompt string, p map[string]any) map[string]any {
			return map[string]any{
				"prompt":                      prompt,
				"size":                        paramOr(p, "size", "2K"),
				"width":                       paramOr(p, "width", 2048),
				"height":                      paramOr(p, "height", 2048),
				"max_images":                  paramOr(p, "max_images", 1),
				"image_input":                 paramOr(p, "image_input", []any{}),
				"aspect_ratio":                paramOr(p, "aspect_ratio", "4:3"),
				"sequential_image_generation": paramOr(p, "sequential_image_generation", "disabled"),
			}
		},
	},
	{
		Key:         "flux-schnell",
		Model:       "black-forest-labs/flux-schnell",
		Name:        "Flux Schnell",
		Type:        domain.ContentTypeImage,
		Description: "Fast image generation, 4 inference steps",
		BuildInput: func(prompt string, p map[string]any) map[string]any {
			return fluxInput(prompt, p, 4, 0)
		},
	},
	{
		Key:         "flux-dev",
		Model:       "black-forest-labs/flux-dev",
		Name:        "Flux Dev",
		Type:        domain.ContentTypeImage,
		Description: "Higher quality image generation, 28 inference steps",
		BuildInput: func(prompt string, p map[string]any) map[string]any {
			return fluxInput(prompt, p, 28, 3.5)
		},
	},
	{
		Key:         "ltx-video",
		Model:       "lightricks/ltx-video:8c47da666861d081eeb4d1261853087de23923a268a69b63febdf5dc1dee08e4",
		Name:        "LTX Video",
		Type:        domain.ContentTypeVideo,
		Description: "Short video clips, 16:9, about five seconds",
		BuildInput: func(prompt string, p map[string]any) map[string]any {
			return map[string]any{
				"prompt":              prompt,
				"aspect_ratio":        paramOr(p, "aspect_ratio", "16:9"),
				"negative_prompt":     paramOr(p, "negative_prompt", "low quality, worst quality, deformed, distorted, watermark"),
				"num_frames":          paramOr(p, "num_frames", 121),
				"num_inference_steps": paramOr(p, "num_inference_steps", 30),
			}
		},
	},
	{
		Key:         "lyria-2",
		Model:       "google/lyria-2",
		Name:        "Lyria 2",
		Type:        domain.ContentTypeAudio,
		Description: "Instrumental music generation, ten second clips",
		BuildInput: func(prompt string, p map[string]any) map[string]any {
			return map[string]any{
				"prompt":      prompt,
				"duration":    paramOr(p, "duration", 10),
				"temperature": paramOr(p, "temperature", 1.0),
			}
		},
	},
	{
		Key:         "musicgen",
		Model:       "meta/musicgen:671ac645ce5e552cc63a54a2bbff63fcf798043055d2dac5fc9e36a837eedcfb",
		Name:        "MusicGen",
		Type:        domain.ContentTypeAudio,
		Description: "Stereo music generation, mp3 output",
		BuildInput: func(prompt string, p map[string]any) map[string]any {
			return map[string]any{
				"prompt":                   prompt,
				"model_version":            paramOr(p, "model_version", "stereo-large"),
				"duration":                 paramOr(p, "duration", 8),
				"temperature":              paramOr(p, "temperature", 1.0),
				"top_k":                    paramOr(p, "top_k", 250),
				"top_p":                    paramOr(p, "top_p", 0),
				"classifier_free_guidance": paramOr(p, "classifier_free_guidance", 3),
				// Fixed output encoding; the pipeline relies on these formats.
				"output_format":          "mp3",
				"normalization_strategy": "peak",
			}
		},
	},
}

func fluxInput(prompt string, p map[string]any, steps int, guidance float64) map[string]any {
	return map[string]any{
		"prompt":              prompt,
		"num_outputs":         paramOr(p, "num_outputs", 1),
		"aspect_ratio":        paramOr(p, "aspect_ratio", "1:1"),
		"output_format":       "png",
		"output_quality":      paramOr(p, "output_quality", 80),
		"num_inference_steps": paramOr(p, "num_inference_steps", steps),
		"guidance_scale":      paramOr(p, "guidance_scale", guidance),
	}
}

func paramOr(params map[string]any, key string, fallback any) any {
	if params != nil {
		if v, ok := params[key]; ok && v != nil {
			return v
		}
	}
	return fallback
}

var typeDefaults = map[string]string{
	domain.ContentTypeVideo: "ltx-video",
	domain.ContentTypeAudio: "lyria-2",
}

// Resolve picks the spec for a model identifier. Empty identifiers resolve to
// the content type's default; unrecognized ones synthesize a passthrough spec
// keyed on the identifier itself.
func Resolve(identifier, contentType string) Spec {
	if identifier == "" {
		key, ok := typeDefaults[contentType]
		if !ok {
			key = "seedream-4"
		}
		identifier = key
	}
	for _, s := range specs {
		if s.Key == identifier || s.Model == identifier {
			return s
		}
	}
	for _, s := range specs {
		if strings.Contains(identifier, s.Key) {
			return s
		}
	}
	return synthesize(identifier, contentType)
}

func synthesize(identifier, contentType string) Spec {
	if contentType == "" {
		contentType = domain.ContentTypeImage
	}
	base := identifier
	if i := strings.LastIndex(base, ":"); i >= 0 {
		base = base[:i]
	}
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	name := titleCaser.String(strings.ReplaceAll(base, "-", " "))
	return Spec{
		Key:   identifier,
		Model: identifier,
		Name:  name,
		Type:  contentType,
		BuildInput: func(prompt string, p map[string]any) map[string]any {
			input := map[string]any{"prompt": prompt}
			for k, v := range p {
				input[k] = v
			}
			return input
		},
	}
}

// Catalog lists the built-in specs for the models endpoint.
func Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(specs))
	for _, s := range specs {
		entries = append(entries, CatalogEntry{
			Key:         s.Key,
			Name:        s.Name,
			Type:        s.Type,
			Model:       s.Model,
			Description: s.Description,
		})
	}
	return entries
}

// BuildGenerationParams copies the provider input and stamps it with the
// provenance fields stored alongside each content record.
func BuildGenerationParams(spec Spec, input map[string]any, now time.Time) map[string]any {
	params := make(map[string]any, len(input)+4)
	for k, v := range input {
		params[k] = v
	}
	version := "latest"
	if i := strings.LastIndex(spec.Model, ":"); i >= 0 {
		version = spec.Model[i+1:]
	}
	params["model_version"] = spec.Model
	params["model_name"] = spec.Name
	params["generated_at"] = now.UTC().Format(time.RFC3339)
	params["replicate_version"] = version
	return params
}

// Describe renders a one-line human summary of a generation.
func Describe(spec Spec, prompt string, input map[string]any) string {
	parts := []string{prompt}
	if s, ok := input["aspect_ratio"].(string); ok && s != "" {
		parts = append(parts, "Aspect ratio: "+s)
	}
	if v := numParam(input, "num_inference_steps"); v != "" && v != "0" {
		parts = append(parts, "Steps: "+v)
	}
	if v := numParam(input, "guidance_scale"); v != "" && v != "0" {
		parts = append(parts, "Guidance: "+v)
	}
	if v := numParam(input, "num_frames"); v != "" && v != "0" {
		parts = append(parts, "Frames: "+v)
	}
	if v := numParam(input, "duration"); v != "" && v != "0" {
		parts = append(parts, "Duration: "+v+"s")
	}
	parts = append(parts, "Model: "+spec.Name)
	return strings.Join(parts, " | ")
}

func numParam(input map[string]any, key string) string {
	switch v := input[key].(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case string:
		return ""
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
