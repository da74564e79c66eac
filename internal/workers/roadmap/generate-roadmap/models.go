// internal/workers/roadmap/generate-roadmap/models.go
package generateroadmap

import "visaverse-copilot/internal/models"

type Input struct {
	models.GenerationRequest
}

type Output struct {
	Roadmap     string `json:"roadmap"`
	Destination string `json:"destination"`
	GeneratedAt string `json:"generatedAt"`
}
