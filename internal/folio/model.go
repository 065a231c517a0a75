package folio

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ImageRef is an opaque reference to an image (a URL, a data: URL, a path).
// The service stores whatever the caller supplies and never inspects it.
type ImageRef string

// Project is a portfolio entry.
type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies"`
	LiveURL      string    `json:"liveUrl,omitempty"`
	GithubURL    string    `json:"githubUrl,omitempty"`
	ProjectImage ImageRef  `json:"projectImage,omitempty"`
	BannerImage  ImageRef  `json:"bannerImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p Project) clone() Project {
	p.Technologies = slices.Clone(p.Technologies)
	return p
}

// ContactStatus is the lifecycle state of a contact message.
type ContactStatus string

const (
	StatusNew     ContactStatus = "new"
	StatusRead    ContactStatus = "read"
	StatusReplied ContactStatus = "replied"
)

// Contact is a message left by a visitor.
type Contact struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"createdAt"`
	Read      bool          `json:"read"`
	Status    ContactStatus `json:"status"`
}

// TechList is a list of technologies. In JSON it accepts either an array of
// strings or a single comma-separated string.
type TechList []string

func (t *TechList) UnmarshalJSON(data []byte) error {
	var csv string
	if err := json.Unmarshal(data, &csv); err == nil {
		*t = SplitTechnologies(csv)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("technologies must be a string or a list of strings: %w", err)
	}
	*t = list
	return nil
}

// SplitTechnologies splits a comma-separated technology string.
func SplitTechnologies(csv string) []string {
	return NormalizeTechnologies(strings.Split(csv, ","))
}

// NormalizeTechnologies trims every entry and drops the empty ones.
// Order and duplicates are preserved.
func NormalizeTechnologies(list []string) []string {
	out := make([]string, 0, len(list))
	for _, tech := range list {
		if tech = strings.TrimSpace(tech); tech != "" {
			out = append(out, tech)
		}
	}
	return out
}

// ProjectInput is the payload of RecordService.SaveProject.
// An empty ID creates a project; otherwise the non-nil fields are merged onto
// the stored project with that ID.
type ProjectInput struct {
	ID           string    `json:"id,omitempty"`
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Technologies *TechList `json:"technologies,omitempty"`
	LiveURL      *string   `json:"liveUrl,omitempty"`
	GithubURL    *string   `json:"githubUrl,omitempty"`
	ProjectImage *ImageRef `json:"projectImage,omitempty"`
	BannerImage  *ImageRef `json:"bannerImage,omitempty"`
}

func (in ProjectInput) applyTo(p *Project) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Technologies != nil {
		p.Technologies = NormalizeTechnologies(*in.Technologies)
	}
	if in.LiveURL != nil {
		p.LiveURL = *in.LiveURL
	}
	if in.GithubURL != nil {
		p.GithubURL = *in.GithubURL
	}
	if in.ProjectImage != nil {
		p.ProjectImage = *in.ProjectImage
	}
	if in.BannerImage != nil {
		p.BannerImage = *in.BannerImage
	}
}

// ContactInput is the payload of RecordService.SubmitContact.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactReceipt acknowledges a submitted contact message.
type ContactReceipt struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Ptr returns a pointer to v. It keeps ProjectInput literals short.
func Ptr[T any](v T) *T { return &v }
