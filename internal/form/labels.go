package form

// ColorLabels is the text shown next to the color inputs for one mask.
type ColorLabels struct {
	ShowGradient  bool
	FillLabel     string
	FillHelp      string
	GradientLabel string
	GradientHelp  string
}

var (
	centerEdgeLabels = ColorLabels{
		ShowGradient:  true,
		FillLabel:     "Center Color:",
		FillHelp:      "Color at the center of the QR code",
		GradientLabel: "Edge Color:",
		GradientHelp:  "Color at the edges of the QR code",
	}

	colorLabels = map[ColorMask]ColorLabels{
		MaskSolid: {
			FillLabel: "Fill Color:",
			FillHelp:  "Color of the QR code modules",
		},
		MaskRadialGradient: centerEdgeLabels,
		MaskSquareGradient: centerEdgeLabels,
		MaskHorizontalGradient: {
			ShowGradient:  true,
			FillLabel:     "Left Color:",
			FillHelp:      "Color on the left side of the QR code",
			GradientLabel: "Right Color:",
			GradientHelp:  "Color on the right side of the QR code",
		},
		MaskVerticalGradient: {
			ShowGradient:  true,
			FillLabel:     "Top Color:",
			FillHelp:      "Color at the top of the QR code",
			GradientLabel: "Bottom Color:",
			GradientHelp:  "Color at the bottom of the QR code",
		},
	}
)

// LabelsFor returns the label set for a mask. Unknown masks get the solid set.
func LabelsFor(mask ColorMask) ColorLabels {
	if l, ok := colorLabels[mask]; ok {
		return l
	}
	return colorLabels[MaskSolid]
}
