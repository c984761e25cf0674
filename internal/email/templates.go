package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	tmplOrderOperator = "order_operator.html"
	tmplOrderCustomer = "order_customer.html"
	tmplStatusUpdate  = "status_update.html"
	tmplSalesReport   = "sales_report.html"
	tmplContact       = "contact.html"
)

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{tmplOrderOperator, tmplOrderCustomer, tmplStatusUpdate, tmplSalesReport, tmplContact} {
		pages[name] = template.Must(template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
}

func render(name string, data any) (string, error) {
	t, ok := pages[name]
	if !ok {
		return "", fmt.Errorf("email: unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
