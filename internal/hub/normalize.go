package hub

import (
	"fmt"
	"strconv"
	"strings"
)

// Normalizers convert one provider-native record into the unified ImageResult.
// They are pure and total: the clients have already validated the payload
// shape, so there is no failure path here.

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func NormalizeUnsplash(photo UnsplashPhoto) ImageResult {
	desc := photo.Description
	if desc == "" {
		desc = photo.AltDescription
	}
	tags := make([]string, 0, len(photo.Tags))
	for _, tag := range photo.Tags {
		if tag.Title != "" {
			tags = append(tags, tag.Title)
		}
	}
	return ImageResult{
		ID:          "u-" + photo.ID,
		Source:      Unsplash,
		URLThumb:    photo.Urls.Small,
		URLRegular:  photo.Urls.Regular,
		URLFull:     photo.Urls.Full,
		Width:       photo.Width,
		Height:      photo.Height,
		Description: nullable(desc),
		Author:      photo.User.Name,
		AuthorURL:   nullable(photo.User.Links.Html),
		SourceURL:   photo.Links.Html,
		Tags:        tags,
		Attribution: fmt.Sprintf("Photo by %s on Unsplash", photo.User.Name),
	}
}

func NormalizePixabay(hit PixabayHit) ImageResult {
	// Pixabay only exposes the original-size URL to full-API accounts; fall
	// back through the next-largest sizes rather than fabricating a URL.
	full := hit.ImageURL
	if full == "" {
		full = hit.FullHDURL
	}
	if full == "" {
		full = hit.LargeImageURL
	}
	var tags []string
	for _, t := range strings.Split(hit.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if tags == nil {
		tags = []string{}
	}
	return ImageResult{
		ID:          "pb-" + strconv.Itoa(hit.ID),
		Source:      Pixabay,
		URLThumb:    hit.WebFormatURL,
		URLRegular:  hit.LargeImageURL,
		URLFull:     full,
		Width:       hit.ImageWidth,
		Height:      hit.ImageHeight,
		Description: nil, // Pixabay has no description field
		Author:      hit.User,
		AuthorURL:   nil,
		SourceURL:   fmt.Sprintf("https://pixabay.com/photos/%d/", hit.ID),
		Tags:        tags,
		Attribution: fmt.Sprintf("Image by %s from Pixabay", hit.User),
	}
}

func NormalizePexels(photo PexelsPhoto) ImageResult {
	tags := []string{}
	if photo.Alt != "" {
		tags = append(tags, photo.Alt)
	}
	return ImageResult{
		ID:          "px-" + strconv.Itoa(photo.ID),
		Source:      Pexels,
		URLThumb:    photo.Src.Small,
		URLRegular:  photo.Src.Large,
		URLFull:     photo.Src.Original,
		Width:       photo.Width,
		Height:      photo.Height,
		Description: nullable(photo.Alt),
		Author:      photo.Photographer,
		AuthorURL:   nullable(photo.PhotographerURL),
		SourceURL:   photo.URL,
		Tags:        tags,
		Attribution: fmt.Sprintf("Photo by %s from Pexels", photo.Photographer),
	}
}
