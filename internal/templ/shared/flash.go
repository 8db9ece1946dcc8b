// Package shared holds types and components used across pages.
package shared

import (
	"context"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

// FlashType selects the styling of a flash message.
type FlashType string

const (
	FlashSuccess FlashType = "success"
	FlashError   FlashType = "error"
	FlashWarning FlashType = "warning"
	FlashInfo    FlashType = "info"
)

// Flash is a one-off message shown above a form.
type Flash struct {
	Type    FlashType
	Title   string
	Message string
}

const flashBase = "rounded-md border p-4 mb-6 text-sm bg-gray-900 border-gray-700 text-white"

var flashVariants = map[FlashType]string{
	FlashSuccess: "bg-green-950 border-green-600 text-green-200",
	FlashError:   "bg-red-950 border-red-600 text-red-200",
	FlashWarning: "bg-yellow-950 border-yellow-600 text-yellow-200",
	FlashInfo:    "bg-blue-950 border-blue-600 text-blue-200",
}

// FlashClasses returns the merged class list for a flash of type t.
func FlashClasses(t FlashType) string {
	return twmerge.Merge(flashBase, flashVariants[t])
}

// FlashMessage renders f, or nothing when f is nil.
func FlashMessage(f *Flash) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if f == nil {
			return nil
		}

		role := "status"
		if f.Type == FlashError {
			role = "alert"
		}

		if _, err := io.WriteString(w, `<div role="`+role+`" class="`+templ.EscapeString(FlashClasses(f.Type))+`">`); err != nil {
			return err
		}
		if f.Title != "" {
			if _, err := io.WriteString(w, `<p class="font-semibold">`+templ.EscapeString(f.Title)+`</p>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `<p>`+templ.EscapeString(f.Message)+`</p></div>`)
		return err
	})
}
