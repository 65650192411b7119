package options

import (
	"fmt"
	"strings"
)

// RenderText emits spec's option-list text format: header (short/long
// description), one entry per eligible option, with advanced and
// deprecated options buffered and emitted in trailing groups —
// line-for-line behavior of option_list_default.
func RenderText(out Sink, spec ListSpec, optionList []*Option) {
	showDeprecated := spec.All || spec.Filter.Has(FlagDeprecated)
	showAdvanced := spec.All || spec.Filter.Has(FlagAdvanced)

	out.Info("%s", spec.DescriptionShort)
	out.Spacer()
	out.Info("%s", spec.DescriptionLong)
	out.BeginList("")

	var deprecated, advanced []*Option
	for _, o := range optionList {
		if !hasAllFlags(o.Flags, spec.Filter) {
			continue
		}
		switch {
		case o.Flags.Has(FlagDeprecated):
			if showDeprecated {
				deprecated = append(deprecated, o)
			}
		case o.Flags.Has(FlagAdvanced):
			if showAdvanced {
				advanced = append(advanced, o)
			}
		default:
			out.Spacer()
			renderOption(out, o)
		}
	}

	if len(advanced) > 0 {
		out.Spacer()
		out.BeginList("ADVANCED OPTIONS")
		for _, o := range advanced {
			out.Spacer()
			renderOption(out, o)
		}
		out.EndList()
	}

	if len(deprecated) > 0 {
		out.Spacer()
		out.BeginList("DEPRECATED OPTIONS (will be removed in a future release)")
		for _, o := range deprecated {
			out.Spacer()
			renderOption(out, o)
		}
		out.EndList()
	}

	out.EndList()
}

func hasAllFlags(have, want Flag) bool { return have&want == want }

func renderOption(out Sink, o *Option) {
	descShort, descLong := o.DescriptionShort, o.DescriptionLong
	if descShort == "" {
		descShort, descLong = descLong, ""
	}

	out.ListItem(o.Name, "%s", descShort)
	out.BeginList("")
	if descLong != "" {
		out.ListItem("", "%s", descLong)
	}
	renderPossibleValues(out, o)
	out.EndList()
}

// renderPossibleValues implements add_possible_values_default,
// including the `found_default` quirk: when DefaultValue is nil,
// foundDefault starts true, so a select option with no declared
// default never gets a " (default)" marker even if one of its values
// happens to equal some later-introduced default.
func renderPossibleValues(out Sink, o *Option) {
	label := "Possible values"
	if o.Flags.Has(FlagGenerated) {
		label = "Possible values (generated by Pacemaker)"
	}

	var buf strings.Builder
	if o.Type == "select" && len(o.Values) > 0 {
		foundDefault := o.DefaultValue == nil
		for i, v := range o.Values {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteByte('"')
			buf.WriteString(v)
			buf.WriteByte('"')
			if !foundDefault && o.DefaultValue != nil && v == *o.DefaultValue {
				foundDefault = true
				buf.WriteString(" (default)")
			}
		}
	} else if o.DefaultValue != nil {
		fmt.Fprintf(&buf, "%s (default: %q)", o.Type, *o.DefaultValue)
	} else {
		fmt.Fprintf(&buf, "%s (no default)", o.Type)
	}

	out.ListItem(label, "%s", buf.String())
}
