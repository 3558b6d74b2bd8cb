package field

// Mode tells the form renderer whether a record is being created or edited.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Built-in widget identifiers.
const (
	WidgetInput       = "input"
	WidgetTextarea    = "textarea"
	WidgetSelect      = "select"
	WidgetCheckboxes  = "checkbox-group"
	WidgetFileUpload  = "file-upload"
	defaultFileAccept = "image/*,application/pdf"
)

type widgetSpec struct {
	widget    string
	inputType string
}

var widgets = map[Type]widgetSpec{
	TypeText:        {widget: WidgetInput, inputType: "text"},
	TypeEmail:       {widget: WidgetInput, inputType: "email"},
	TypePhone:       {widget: WidgetInput, inputType: "tel"},
	TypeNumber:      {widget: WidgetInput, inputType: "number"},
	TypeDate:        {widget: WidgetInput, inputType: "date"},
	TypeTextarea:    {widget: WidgetTextarea},
	TypeSelect:      {widget: WidgetSelect},
	TypeMultiSelect: {widget: WidgetCheckboxes},
	TypeFile:        {widget: WidgetFileUpload, inputType: "file"},
}

// Widget is an input control bound to one dynamic field.
type Widget struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Type        Type        `json:"type"`
	Widget      string      `json:"widget"`
	InputType   string      `json:"input_type,omitempty"`
	Required    bool        `json:"required"`
	ReadOnly    bool        `json:"read_only"`
	Multiple    bool        `json:"multiple,omitempty"`
	Accept      string      `json:"accept,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	HelpText    string      `json:"help_text,omitempty"`
	TabIndex    int         `json:"tab_index"`
	Value       interface{} `json:"value"`
}

// Form is the renderable description of a Template for one record.
type Form struct {
	Kind    Kind     `json:"kind"`
	Version int      `json:"version"`
	Mode    Mode     `json:"mode"`
	Widgets []Widget `json:"widgets"`
}

// RenderForm binds values to the widgets of the visible fields, in display order.
// Non-editable fields are read-only when editing.
func RenderForm(tpl Template, values map[string]interface{}, mode Mode) Form {
	visible := tpl.Visible()
	form := Form{
		Kind:    tpl.Kind,
		Version: tpl.Version,
		Mode:    mode,
		Widgets: make([]Widget, 0, len(visible)),
	}
	for i, d := range visible {
		ws, ok := widgets[d.Type]
		if !ok {
			ws = widgets[TypeText]
		}
		w := Widget{
			Name:        d.Name,
			Label:       d.Label,
			Type:        d.Type,
			Widget:      ws.widget,
			InputType:   ws.inputType,
			Required:    d.Required,
			ReadOnly:    mode == ModeEdit && !d.Editable,
			Options:     d.Options,
			Placeholder: d.Placeholder,
			HelpText:    d.HelpText,
			TabIndex:    i + 1,
			Value:       bindValue(d, values[d.Name]),
		}
		switch d.Type {
		case TypeMultiSelect:
			w.Multiple = true
		case TypeFile:
			w.Accept = defaultFileAccept
		}
		form.Widgets = append(form.Widgets, w)
	}
	return form
}

// bindValue gives every widget a value of the shape its control expects.
func bindValue(d Descriptor, value interface{}) interface{} {
	if d.Type == TypeMultiSelect {
		if selected := toStrings(value); selected != nil {
			return selected
		}
		return []string{}
	}
	if value == nil {
		return ""
	}
	return value
}

func toStrings(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		ss := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				ss = append(ss, s)
			}
		}
		return ss
	}
	return nil
}
