package contact

import (
	"context"
	"io"
	"strings"

	"github.com/DukeRupert/cowork/internal/templ/components"
	"github.com/DukeRupert/cowork/internal/templ/shared"
	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

const (
	inputBase    = "w-full rounded-md border px-3 py-2 bg-white text-black border-gray-600"
	inputInvalid = "border-red-500"
	labelClass   = "block mb-1 text-white"
	errorClass   = "mt-1 text-sm text-red-500"
	buttonClass  = "w-full mt-6 rounded-md py-2 bg-green-500 hover:bg-green-600 text-black font-bold"
)

// CallbackPage renders the complete call back page.
func CallbackPage(data CallbackPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>Request a Call Back</title></head><body class="bg-black">`); err != nil {
			return err
		}
		if err := CallbackForm(data).Render(ctx, w); err != nil {
			return err
		}
		if data.WhatsAppURL != "" {
			if err := components.WhatsAppButton(data.WhatsAppURL, "").Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// CallbackForm renders the call back card on its own, for embedding in
// other pages.
func CallbackForm(data CallbackPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<div class="bg-black border border-gray-700 p-8 rounded-lg shadow-lg">`)
		b.WriteString(`<h2 class="font-headline text-3xl text-green-400 mb-6">Request a Call Back</h2>`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := shared.FlashMessage(data.Flash).Render(ctx, w); err != nil {
			return err
		}

		b.Reset()
		b.WriteString(`<form method="POST" action="/contact" novalidate class="space-y-4">`)
		b.WriteString(`<input type="hidden" name="csrf_token" value="` + templ.EscapeString(data.CSRFToken) + `">`)

		writeInput(&b, data, "name", "Name", "text", data.Form.Name, true)
		writeInput(&b, data, "companyName", "Company Name", "text", data.Form.CompanyName, false)
		writeInput(&b, data, "email", "Email", "email", data.Form.Email, true)
		writeInput(&b, data, "phone", "Phone Number", "tel", data.Form.Phone, true)
		writeSelect(&b, data)
		writeTextarea(&b, data)

		b.WriteString(`<button type="submit" class="` + buttonClass + `"`)
		if data.Sending {
			b.WriteString(` disabled aria-busy="true"`)
		}
		b.WriteString(`>Get in Touch</button></form></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeLabel(b *strings.Builder, field, label string, required bool) {
	b.WriteString(`<label for="` + field + `" class="` + labelClass + `">` + templ.EscapeString(label))
	if required {
		b.WriteString(` <span class="text-red-500">*</span>`)
	}
	b.WriteString(`</label>`)
}

func writeError(b *strings.Builder, data CallbackPageData, field string) {
	if msg, ok := data.Errors[field]; ok {
		b.WriteString(`<p id="` + field + `-error" class="` + errorClass + `">` + templ.EscapeString(msg) + `</p>`)
	}
}

// fieldClasses returns the control classes, flagging fields with errors.
func fieldClasses(data CallbackPageData, field string) string {
	if _, ok := data.Errors[field]; ok {
		return twmerge.Merge(inputBase, inputInvalid)
	}
	return inputBase
}

func invalidAttrs(data CallbackPageData, field string) string {
	if _, ok := data.Errors[field]; ok {
		return ` aria-invalid="true" aria-describedby="` + field + `-error"`
	}
	return ""
}

func writeInput(b *strings.Builder, data CallbackPageData, field, label, inputType, value string, required bool) {
	b.WriteString(`<div>`)
	writeLabel(b, field, label, required)
	b.WriteString(`<input id="` + field + `" name="` + field + `" type="` + inputType + `" placeholder="` +
		templ.EscapeString(label) + `" value="` + templ.EscapeString(value) + `" class="` +
		fieldClasses(data, field) + `"` + invalidAttrs(data, field) + `>`)
	writeError(b, data, field)
	b.WriteString(`</div>`)
}

func writeSelect(b *strings.Builder, data CallbackPageData) {
	const field = "workspaceType"

	b.WriteString(`<div>`)
	writeLabel(b, field, "Select Workspace", true)
	b.WriteString(`<select id="` + field + `" name="` + field + `" class="` + fieldClasses(data, field) + `"` +
		invalidAttrs(data, field) + `>`)

	b.WriteString(`<option value=""`)
	if data.Form.WorkspaceType == "" {
		b.WriteString(` selected`)
	}
	b.WriteString(`>Select a workspace</option>`)

	for _, opt := range data.Workspaces {
		b.WriteString(`<option value="` + templ.EscapeString(opt.Value) + `"`)
		if opt.Value == data.Form.WorkspaceType {
			b.WriteString(` selected`)
		}
		b.WriteString(`>` + templ.EscapeString(opt.Label) + `</option>`)
	}
	b.WriteString(`</select>`)
	writeError(b, data, field)
	b.WriteString(`</div>`)
}

func writeTextarea(b *strings.Builder, data CallbackPageData) {
	const field = "message"

	b.WriteString(`<div>`)
	writeLabel(b, field, "Additional Requests", false)
	b.WriteString(`<textarea id="` + field + `" name="` + field + `" placeholder="Message" rows="4" class="` +
		fieldClasses(data, field) + `">` + templ.EscapeString(data.Form.Message) + `</textarea>`)
	writeError(b, data, field)
	b.WriteString(`</div>`)
}
