package mailer

import (
	"bytes"
	"html/template"
	"time"

	"github.com/completecity/petryk/internal/model"
	"github.com/pkg/errors"
)

var created = template.Must(template.New("created").Parse(createdHTML))

type createdData struct {
	Timestamp string
	ID        string
	Fields    map[string]any
	Opinion   string
	Email     string
}

// RenderCreated renders the notification email sent after an item creation.
func RenderCreated(item *model.Item) (string, error) {
	data := createdData{
		Timestamp: time.Now().UTC().Format("January 02, 2006 at 15:04 UTC"),
		ID:        item.ID,
		Fields:    item.Payload(),
		Opinion:   item.Opinion,
		Email:     item.Email,
	}

	var buf bytes.Buffer
	if err := created.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "could not render created template")
	}
	return buf.String(), nil
}

const createdHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin: 0; padding: 0; background-color: #f9fafb; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;">
  <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
    <div style="background: #ffffff; border-radius: 12px; overflow: hidden; box-shadow: 0 1px 3px rgba(0,0,0,0.1);">

      <div style="background: linear-gradient(135deg, #db2777 0%, #f97316 100%); padding: 32px; text-align: center;">
        <div style="font-size: 48px; margin-bottom: 8px;">&#x1F437;</div>
        <h1 style="margin: 0; color: #ffffff; font-size: 24px; font-weight: 700;">Petryk</h1>
        <p style="margin: 8px 0 0; color: #fecdd3; font-size: 14px;">Memory Saved Successfully</p>
      </div>

      <div style="padding: 32px;">
        <p style="margin: 0 0 8px; color: #6b7280; font-size: 13px;">{{.Timestamp}}</p>
        <p style="margin: 0 0 24px; color: #111827; font-size: 16px;">
          Petryk has saved this to his brain. Here&rsquo;s what he remembers:
        </p>

        <div style="background: #f0f9ff; border: 1px solid #bae6fd; border-radius: 8px; padding: 16px; margin-bottom: 24px;">
          <p style="margin: 0; font-size: 12px; color: #0369a1; text-transform: uppercase; letter-spacing: 0.05em; font-weight: 600;">Item ID</p>
          <p style="margin: 4px 0 0; font-family: 'SF Mono', Monaco, monospace; font-size: 14px; color: #0c4a6e; word-break: break-all;">{{.ID}}</p>
        </div>

        <table style="width: 100%; border-collapse: collapse; border: 1px solid #e5e7eb; border-radius: 8px; overflow: hidden;">
          <thead>
            <tr style="background: #f9fafb;">
              <th style="padding: 10px 16px; text-align: left; font-size: 12px; text-transform: uppercase; letter-spacing: 0.05em; color: #6b7280; border-bottom: 2px solid #e5e7eb;">Field</th>
              <th style="padding: 10px 16px; text-align: left; font-size: 12px; text-transform: uppercase; letter-spacing: 0.05em; color: #6b7280; border-bottom: 2px solid #e5e7eb;">Value</th>
            </tr>
          </thead>
          <tbody>
            {{- range $field, $value := .Fields}}
            <tr>
              <td style="padding: 12px 16px; border-bottom: 1px solid #e5e7eb; font-weight: 600; color: #374151; width: 140px; vertical-align: top;">{{$field}}</td>
              <td style="padding: 12px 16px; border-bottom: 1px solid #e5e7eb; color: #111827; font-family: 'SF Mono', Monaco, monospace; font-size: 13px;">{{printf "%v" $value}}</td>
            </tr>
            {{- end}}
          </tbody>
        </table>

        {{- if .Opinion}}
        <div style="background: linear-gradient(135deg, #fdf2f8 0%, #fff7ed 100%); border: 1px solid #fbcfe8; border-radius: 8px; padding: 16px; margin-top: 24px;">
          <p style="margin: 0 0 8px; font-size: 12px; color: #be185d; text-transform: uppercase; letter-spacing: 0.05em; font-weight: 600;">&#x1F437; Petryk&rsquo;s Take</p>
          <p style="margin: 0; font-size: 14px; color: #831843; line-height: 1.5;">{{.Opinion}}</p>
        </div>
        {{- end}}

        <p style="margin: 24px 0 0; color: #9ca3af; font-size: 12px;">
          Submitted by <strong style="color: #6b7280;">{{.Email}}</strong>
        </p>
      </div>

      <div style="background: #f9fafb; padding: 20px 32px; border-top: 1px solid #e5e7eb; text-align: center;">
        <p style="margin: 0; color: #9ca3af; font-size: 12px;">
          &#x1F437; Petryk &mdash; he remembers everything so you don&rsquo;t have to.
        </p>
      </div>
    </div>
  </div>
</body>
</html>
`
