package flows

import (
	"github.com/jonathan/job-assistant/internal/rendering"
	"github.com/jonathan/job-assistant/internal/state"
)

// Download is a text file offered to the visitor.
type Download struct {
	Filename    string
	ContentType string
	Body        string
}

const textPlain = "text/plain; charset=utf-8"

// CoverLetterDownload returns the last generated letter as a file.
func CoverLetterDownload(st state.State) (Download, error) {
	if st.CoverLetter == nil {
		return Download{}, ErrNothingToDownload
	}
	return Download{
		Filename:    rendering.CoverLetterFilename(st.CoverLetter.Company),
		ContentType: textPlain,
		Body:        st.CoverLetter.Text,
	}, nil
}

// BriefDownload returns the last research brief as a file.
func BriefDownload(st state.State) (Download, error) {
	if st.Research == nil {
		return Download{}, ErrNothingToDownload
	}
	return Download{
		Filename:    rendering.BriefFilename(st.Research.CompanyName),
		ContentType: textPlain,
		Body:        st.Research.AIBrief,
	}, nil
}
