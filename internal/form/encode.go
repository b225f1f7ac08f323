package form

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
)

// Encode writes the state as a multipart body and returns its content type.
// The gradient color is only sent for gradient masks.
func (s State) Encode(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)
	fields := [][2]string{
		{FieldData, s.Data},
		{FieldVersion, s.VersionValue()},
		{FieldErrorCorrection, s.ErrorCorrection},
		{FieldBoxSize, strconv.Itoa(s.BoxSize)},
		{FieldBorder, strconv.Itoa(s.Border)},
		{FieldFillColor, s.FillColor},
		{FieldBackColor, s.BackColor},
		{FieldModuleDrawer, string(s.ModuleDrawer)},
		{FieldColorMask, string(s.ColorMask)},
	}
	if s.ColorMask.IsGradient() {
		fields = append(fields, [2]string{FieldGradientColor, s.GradientColor})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if up := s.EmbeddedImage; up != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldEmbeddedImage, up.Filename))
		h.Set("Content-Type", up.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return "", fmt.Errorf("create upload part: %w", err)
		}
		if _, err := part.Write(up.Content); err != nil {
			return "", fmt.Errorf("write upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	return mw.FormDataContentType(), nil
}
