package tmdb

const imageBaseURL = "https://image.tmdb.org/t/p/"

// PosterURL returns the poster image URL for path, or "" when path is empty.
func PosterURL(path, size string) string {
	return imageURL(path, size, "w500")
}

func ProfileURL(path, size string) string {
	return imageURL(path, size, "w185")
}

func BackdropURL(path, size string) string {
	return imageURL(path, size, "w1280")
}

func LogoURL(path, size string) string {
	return imageURL(path, size, "w92")
}

func imageURL(path, size, fallback string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = fallback
	}
	return imageBaseURL + size + path
}
