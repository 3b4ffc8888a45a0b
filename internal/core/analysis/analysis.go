// Package analysis detects which builder image can build an existing code
// base, from nothing more than the list of files it contains.
//
// This is part of the Functional Core: listing the files of a checkout is done
// by internal/shell/gitrepo.
package analysis

import (
	"fmt"

	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/core/template"
)

// EnumID is the enum catalog entry listing the known builder images.
const EnumID = "builder.image"

// BuilderImage is an image able to build code of one language.
type BuilderImage struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Image    string   `json:"image" yaml:"image"`
	Language string   `json:"language" yaml:"language"`
	Markers  []string `json:"markers,omitempty" yaml:"markers,omitempty"`
}

// BuilderImages converts the builder.image enumeration into BuilderImages,
// keeping catalog order.
func BuilderImages(enums catalog.Enums) []BuilderImage {
	vals, _ := enums.Lookup(EnumID)
	out := make([]BuilderImage, 0, len(vals))
	for _, v := range vals {
		img := BuilderImage{
			ID:       v.ID,
			Name:     v.Name,
			Image:    v.Metadata.String("image"),
			Language: v.Metadata.String("language"),
		}
		if raw, ok := v.Metadata.Get("markers"); ok {
			if list, ok := raw.([]any); ok {
				for _, m := range list {
					img.Markers = append(img.Markers, fmt.Sprint(m))
				}
			}
		}
		out = append(out, img)
	}
	return out
}

// Detect returns the first image, in catalog order, that has a marker
// matching one of files. Files are slash-separated paths relative to the
// repository root.
//
// Example:
//
//	img, ok := Detect([]string{"pom.xml", "src/main/java/App.java"}, images)
//	// img.Language == "java"
func Detect(files []string, images []BuilderImage) (BuilderImage, bool) {
	for _, img := range images {
		for _, f := range files {
			if template.Matches(f, img.Markers) {
				return img, true
			}
		}
	}
	return BuilderImage{}, false
}

// ByID returns the image with the given id or image reference.
func ByID(images []BuilderImage, id string) (BuilderImage, bool) {
	for _, img := range images {
		if img.ID == id || img.Image == id {
			return img, true
		}
	}
	return BuilderImage{}, false
}
