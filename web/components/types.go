package components

import "github.com/cristianadrielbraun/qrform/internal/form"

// PageState is everything the form page shows at one moment.
type PageState struct {
	Form       form.State
	Versions   []int
	Labels     form.ColorLabels
	Generating bool
	Error      string
	ImageSrc   string
	// DownloadURL is set once a generation succeeded; empty disables download.
	DownloadURL string
	Navigated   string
}

// DownloadEnabled reports whether the download action is live.
func (s PageState) DownloadEnabled() bool {
	return s.DownloadURL != ""
}
