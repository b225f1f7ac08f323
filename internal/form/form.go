package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names as sent in the multipart body of POST /generate.
const (
	FieldData            = "data"
	FieldVersion         = "version"
	FieldErrorCorrection = "error_correction"
	FieldBoxSize         = "box_size"
	FieldBorder          = "border"
	FieldFillColor       = "fill_color"
	FieldBackColor       = "back_color"
	FieldGradientColor   = "gradient_color"
	FieldModuleDrawer    = "module_drawer"
	FieldColorMask       = "color_mask"
	FieldEmbeddedImage   = "embedded_image"
)

// Fields lists the editable fields in the order the form shows them.
var Fields = []string{
	FieldData,
	FieldVersion,
	FieldErrorCorrection,
	FieldBoxSize,
	FieldBorder,
	FieldModuleDrawer,
	FieldColorMask,
	FieldFillColor,
	FieldGradientColor,
	FieldBackColor,
	FieldEmbeddedImage,
}

// MaxVersion is the largest QR symbol version.
const MaxVersion = 40

// AutoVersion lets the server pick the smallest version that fits the data.
const AutoVersion = 0

// ColorMask selects how module colors are painted.
type ColorMask string

const (
	MaskSolid              ColorMask = "solid"
	MaskRadialGradient     ColorMask = "radial_gradient"
	MaskSquareGradient     ColorMask = "square_gradient"
	MaskHorizontalGradient ColorMask = "horizontal_gradient"
	MaskVerticalGradient   ColorMask = "vertical_gradient"
)

// ColorMasks in selector order.
var ColorMasks = []ColorMask{
	MaskSolid,
	MaskRadialGradient,
	MaskSquareGradient,
	MaskHorizontalGradient,
	MaskVerticalGradient,
}

// IsGradient reports whether the mask needs a second color.
func (m ColorMask) IsGradient() bool {
	switch m {
	case MaskRadialGradient, MaskSquareGradient, MaskHorizontalGradient, MaskVerticalGradient:
		return true
	}
	return false
}

// ModuleDrawer selects the module shape.
type ModuleDrawer string

const (
	DrawerSquare         ModuleDrawer = "square"
	DrawerGappedSquare   ModuleDrawer = "gapped_square"
	DrawerCircle         ModuleDrawer = "circle"
	DrawerRounded        ModuleDrawer = "rounded"
	DrawerVerticalBars   ModuleDrawer = "vertical_bars"
	DrawerHorizontalBars ModuleDrawer = "horizontal_bars"
)

var ModuleDrawers = []ModuleDrawer{
	DrawerSquare,
	DrawerGappedSquare,
	DrawerCircle,
	DrawerRounded,
	DrawerVerticalBars,
	DrawerHorizontalBars,
}

// ErrorCorrection levels L, M, Q and H.
var ErrorCorrections = []string{"L", "M", "Q", "H"}

// State is a snapshot of every form field.
type State struct {
	Data            string       `validate:"required,max=4096"`
	Version         int          `validate:"min=0,max=40"`
	ErrorCorrection string       `validate:"oneof=L M Q H"`
	BoxSize         int          `validate:"min=1,max=100"`
	Border          int          `validate:"min=0,max=20"`
	FillColor       string       `validate:"qrcolor"`
	BackColor       string       `validate:"qrcolor"`
	GradientColor   string       `validate:"omitempty,qrcolor"`
	ModuleDrawer    ModuleDrawer `validate:"oneof=square gapped_square circle rounded vertical_bars horizontal_bars"`
	ColorMask       ColorMask    `validate:"oneof=solid radial_gradient square_gradient horizontal_gradient vertical_gradient"`
	EmbeddedImage   *Upload      `validate:"omitempty"`
}

// Defaults returns the initial form values.
func Defaults() State {
	return State{
		Data:            "https://example.com",
		Version:         AutoVersion,
		ErrorCorrection: "M",
		BoxSize:         10,
		Border:          4,
		FillColor:       "#000000",
		BackColor:       "#FFFFFF",
		GradientColor:   "#0000FF",
		ModuleDrawer:    DrawerSquare,
		ColorMask:       MaskSolid,
	}
}

// VersionOptions returns the selectable symbol versions, 1 through 40.
func VersionOptions() []int {
	out := make([]int, 0, MaxVersion)
	for i := 1; i <= MaxVersion; i++ {
		out = append(out, i)
	}
	return out
}

// VersionValue formats the version the way the server expects it.
func (s State) VersionValue() string {
	if s.Version == AutoVersion {
		return "auto"
	}
	return strconv.Itoa(s.Version)
}

// Get returns the textual value of a field.
func (s State) Get(field string) string {
	switch field {
	case FieldData:
		return s.Data
	case FieldVersion:
		return s.VersionValue()
	case FieldErrorCorrection:
		return s.ErrorCorrection
	case FieldBoxSize:
		return strconv.Itoa(s.BoxSize)
	case FieldBorder:
		return strconv.Itoa(s.Border)
	case FieldFillColor:
		return s.FillColor
	case FieldBackColor:
		return s.BackColor
	case FieldGradientColor:
		return s.GradientColor
	case FieldModuleDrawer:
		return string(s.ModuleDrawer)
	case FieldColorMask:
		return string(s.ColorMask)
	case FieldEmbeddedImage:
		if s.EmbeddedImage == nil {
			return ""
		}
		return s.EmbeddedImage.Filename
	}
	return ""
}

// Set parses a textual edit into the state. The embedded image is set
// through SetUpload since it carries bytes.
func (s *State) Set(field, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case FieldData:
		s.Data = value
	case FieldVersion:
		if value == "" || strings.EqualFold(value, "auto") {
			s.Version = AutoVersion
			return nil
		}
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 || v > MaxVersion {
			return fmt.Errorf("version must be auto or 1-%d, got %q", MaxVersion, value)
		}
		s.Version = v
	case FieldErrorCorrection:
		v := strings.ToUpper(value)
		if !contains(ErrorCorrections, v) {
			return fmt.Errorf("unknown error correction level %q", value)
		}
		s.ErrorCorrection = v
	case FieldBoxSize:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("box size: %w", err)
		}
		s.BoxSize = v
	case FieldBorder:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("border: %w", err)
		}
		s.Border = v
	case FieldFillColor:
		s.FillColor = normalizeHex(value)
	case FieldBackColor:
		s.BackColor = normalizeHex(value)
	case FieldGradientColor:
		s.GradientColor = normalizeHex(value)
	case FieldModuleDrawer:
		d := ModuleDrawer(value)
		for _, known := range ModuleDrawers {
			if d == known {
				s.ModuleDrawer = d
				return nil
			}
		}
		return fmt.Errorf("unknown module drawer %q", value)
	case FieldColorMask:
		m := ColorMask(value)
		for _, known := range ColorMasks {
			if m == known {
				s.ColorMask = m
				return nil
			}
		}
		return fmt.Errorf("unknown color mask %q", value)
	case FieldEmbeddedImage:
		if value != "" {
			return fmt.Errorf("embedded image must be set from a file")
		}
		s.EmbeddedImage = nil
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// SetUpload attaches or clears the embedded image.
func (s *State) SetUpload(u *Upload) {
	s.EmbeddedImage = u
}

// Transparent is accepted wherever a color is.
const Transparent = "transparent"

// normalizeHex adds the leading # when a bare hex triplet is given.
func normalizeHex(v string) string {
	if strings.EqualFold(v, Transparent) {
		return Transparent
	}
	if v != "" && !strings.HasPrefix(v, "#") {
		return "#" + v
	}
	return v
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
