package options

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// ocfVersion is the OCF resource-agent schema version this module
// emits against, mirroring PCMK_OCF_VERSION.
const ocfVersion = "1.1"

type descXML struct {
	Lang string `xml:"lang,attr"`
	Text string `xml:",chardata"`
}

type optionXML struct {
	Value string `xml:"value,attr"`
}

type contentXML struct {
	Type    string      `xml:"type,attr"`
	Default string      `xml:"default,attr,omitempty"`
	Options []optionXML `xml:"option,omitempty"`
}

type parameterXML struct {
	Name       string      `xml:"name,attr"`
	Advanced   string      `xml:"advanced,attr,omitempty"`
	Generated  string      `xml:"generated,attr,omitempty"`
	Deprecated *struct{}   `xml:"deprecated,omitempty"`
	LongDesc   descXML     `xml:"longdesc"`
	ShortDesc  descXML     `xml:"shortdesc"`
	Content    contentXML  `xml:"content"`
}

type resourceAgentXML struct {
	XMLName    xml.Name       `xml:"resource-agent"`
	Name       string         `xml:"name,attr"`
	Version    string         `xml:"version,attr"`
	OCFVersion string         `xml:"version"`
	LongDesc   descXML        `xml:"longdesc"`
	ShortDesc  descXML        `xml:"shortdesc"`
	Parameters []parameterXML `xml:"parameters>parameter"`
}

// RenderXML builds the OCF-style resource-agent document
// option_list_xml emits: one <parameter> per eligible option, nested
// under <parameters>, with the legacy-mode transform applied when
// spec.Legacy is set.
func RenderXML(spec ListSpec, optionList []*Option) ([]byte, error) {
	doc := resourceAgentXML{
		Name:       spec.Name,
		Version:    "1.0",
		OCFVersion: ocfVersion,
		LongDesc:   descXML{Lang: "en", Text: spec.DescriptionLong},
		ShortDesc:  descXML{Lang: "en", Text: spec.DescriptionShort},
	}

	for _, o := range optionList {
		if !hasAllFlags(o.Flags, spec.Filter) {
			continue
		}
		doc.Parameters = append(doc.Parameters, buildParameter(o, spec.Legacy))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("options: marshal resource-agent xml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func buildParameter(o *Option, legacy bool) parameterXML {
	typ := o.Type
	descLong := o.DescriptionLong
	descShort := o.DescriptionShort
	if descLong == "" {
		descLong = descShort
	} else if descShort == "" {
		descShort = descLong
	}

	advanced := o.Flags.Has(FlagAdvanced)
	deprecated := o.Flags.Has(FlagDeprecated)
	generated := o.Flags.Has(FlagGenerated)

	p := parameterXML{Name: o.Name}
	if !legacy {
		if advanced {
			p.Advanced = "1"
		} else {
			p.Advanced = "0"
		}
		if generated {
			p.Generated = "1"
		} else {
			p.Generated = "0"
		}
		if deprecated {
			p.Deprecated = &struct{}{}
		}
	} else {
		typ = mapLegacyOptionType(typ)
		if len(o.Values) > 0 {
			descLong = fmt.Sprintf("%s  Allowed values: %s", descLong, strings.Join(o.Values, ", "))
		}
		if deprecated || advanced {
			var words []string
			if deprecated {
				words = append(words, "*** Deprecated ***")
			}
			if advanced {
				words = append(words, "*** Advanced Use Only ***")
			}
			words = append(words, descShort)
			descShort = strings.TrimSpace(strings.Join(words, " "))
		}
	}

	p.LongDesc = descXML{Lang: "en", Text: descLong}
	p.ShortDesc = descXML{Lang: "en", Text: descShort}

	content := contentXML{Type: typ}
	if o.DefaultValue != nil {
		content.Default = *o.DefaultValue
	}
	if typ == "select" || o.Type == "select" {
		for _, v := range o.Values {
			content.Options = append(content.Options, optionXML{Value: v})
		}
	}
	p.Content = content
	return p
}

// mapLegacyOptionType implements map_legacy_option_type: daemon
// metadata predates the duration/nonnegative_integer types, so legacy
// consumers expect the older names.
func mapLegacyOptionType(typ string) string {
	switch typ {
	case "duration":
		return "time"
	case "nonnegative_integer":
		return "integer"
	default:
		return typ
	}
}
