package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"html"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"github.com/yeqown/go-qrcode/writer/standard/shapes"

	"github.com/cristianadrielbraun/qrform/internal/form"
)

// qrParams are the parsed /generate fields.
type qrParams struct {
	data          string
	version       int
	level         qrcode.EncodeOption
	boxSize       int
	border        int
	fill          color.RGBA
	back          color.RGBA
	gradientEnd   color.RGBA
	drawer        form.ModuleDrawer
	mask          form.ColorMask
	embeddedImage image.Image
}

var errorCorrectionLevels = map[string]qrcode.EncodeOption{
	"L": qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow),
	"M": qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
	"Q": qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart),
	"H": qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest),
}

// gradientAngles maps each gradient mask onto a linear gradient direction.
// The writer only draws linear gradients, so radial and square run diagonally.
var gradientAngles = map[form.ColorMask]float64{
	form.MaskRadialGradient:     45,
	form.MaskSquareGradient:     45,
	form.MaskHorizontalGradient: 0,
	form.MaskVerticalGradient:   90,
}

// Generate renders a QR code from the form fields, keeps the PNG for
// download and returns it inline as a data URI.
func (h *Handler) Generate(c *gin.Context) {
	p, err := parseParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.logger.Printf("[QR] generate: data=%q version=%d box=%d border=%d drawer=%s mask=%s logo=%t",
		p.data, p.version, p.boxSize, p.border, p.drawer, p.mask, p.embeddedImage != nil)

	h.saveUpload(c)

	id, path := h.store.NewID()
	if err := renderPNG(p, path); err != nil {
		os.Remove(path)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.store.Track(id, path)

	b, err := os.ReadFile(path)
	if err != nil {
		h.store.Remove(id)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to read generated QR code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"image":   "data:image/png;base64," + base64.StdEncoding.EncodeToString(b),
		"qr_id":   id,
	})
}

// Download serves a stored artifact as an attachment.
func (h *Handler) Download(c *gin.Context) {
	path, ok := h.store.Path(c.Param("id"))
	if !ok {
		c.String(http.StatusNotFound, "File not found")
		return
	}
	c.FileAttachment(path, "qrcode.png")
}

// Cleanup removes a stored artifact. It always answers success.
func (h *Handler) Cleanup(c *gin.Context) {
	id := c.PostForm("qr_id")
	if id != "" && h.store.Remove(id) {
		h.logger.Printf("[QR] cleanup: removed %s", id)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseParams(c *gin.Context) (*qrParams, error) {
	p := &qrParams{
		data:   c.DefaultPostForm(form.FieldData, "https://example.com"),
		drawer: form.ModuleDrawer(c.DefaultPostForm(form.FieldModuleDrawer, string(form.DrawerSquare))),
		mask:   form.ColorMask(c.DefaultPostForm(form.FieldColorMask, string(form.MaskSolid))),
	}
	if strings.TrimSpace(p.data) == "" {
		return nil, fmt.Errorf("Data is required")
	}

	switch v := c.DefaultPostForm(form.FieldVersion, "auto"); v {
	case "auto", "":
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > form.MaxVersion {
			return nil, fmt.Errorf("Invalid version: %s", echo(v))
		}
		p.version = n
	}

	level, ok := errorCorrectionLevels[strings.ToUpper(c.DefaultPostForm(form.FieldErrorCorrection, "M"))]
	if !ok {
		level = errorCorrectionLevels["M"]
	}
	p.level = level

	var err error
	if p.boxSize, err = intField(c, form.FieldBoxSize, 10, 1, 100); err != nil {
		return nil, err
	}
	if p.border, err = intField(c, form.FieldBorder, 4, 0, 20); err != nil {
		return nil, err
	}

	if p.fill, err = parseColorParam(c.DefaultPostForm(form.FieldFillColor, "#000000")); err != nil {
		return nil, err
	}
	if p.back, err = parseColorParam(c.DefaultPostForm(form.FieldBackColor, "#FFFFFF")); err != nil {
		return nil, err
	}
	p.gradientEnd = p.back
	if v := c.PostForm(form.FieldGradientColor); v != "" && p.mask.IsGradient() {
		if p.gradientEnd, err = parseColorParam(v); err != nil {
			return nil, err
		}
	}

	file, err := c.FormFile(form.FieldEmbeddedImage)
	if err == nil && file.Filename != "" {
		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("Failed to read embedded image: %v", err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("Embedded image is not a PNG or JPEG: %v", err)
		}
		p.embeddedImage = img
	}
	return p, nil
}

func intField(c *gin.Context, name string, def, min, max int) (int, error) {
	raw := c.PostForm(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("Invalid %s: %s", strings.ReplaceAll(name, "_", " "), echo(raw))
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", strings.ReplaceAll(name, "_", " "), min, max)
	}
	return n, nil
}

// renderPNG encodes p.data and writes the styled PNG to path.
func renderPNG(p *qrParams, path string) error {
	qrc, err := newQRCode(p)
	if err != nil {
		return err
	}

	opts := []standard.ImageOption{
		standard.WithQRWidth(uint8(p.boxSize)),
		standard.WithBorderWidth(p.border * p.boxSize),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	}
	if p.back.A == 0 {
		opts = append(opts, standard.WithBgTransparent())
	} else {
		opts = append(opts, standard.WithBgColor(p.back))
	}
	if shape := moduleShape(p.drawer); shape != nil {
		opts = append(opts, shape)
	}
	if angle, ok := gradientAngles[p.mask]; ok {
		opts = append(opts, standard.WithFgGradient(standard.NewGradient(angle, []standard.ColorStop{
			{T: 0, Color: p.fill},
			{T: 1, Color: p.gradientEnd},
		}...)))
	} else {
		opts = append(opts, standard.WithFgColor(p.fill))
	}
	if p.embeddedImage != nil {
		opts = append(opts, standard.WithLogoImage(p.embeddedImage))
	}

	w, err := standard.New(path, opts...)
	if err != nil {
		return fmt.Errorf("Failed to create QR writer: %v", err)
	}
	if err := qrc.Save(w); err != nil {
		return fmt.Errorf("Failed to generate QR code image: %v", err)
	}
	return nil
}

// newQRCode honours the requested version, growing to the smallest version
// that fits when the data does not fit the requested one.
func newQRCode(p *qrParams) (*qrcode.QRCode, error) {
	if p.version > 0 {
		qrc, err := qrcode.NewWith(p.data, p.level, qrcode.WithVersion(p.version))
		if err == nil {
			return qrc, nil
		}
	}
	qrc, err := qrcode.NewWith(p.data, p.level)
	if err != nil {
		return nil, fmt.Errorf("Failed to create QR code: %v", err)
	}
	return qrc, nil
}

func moduleShape(d form.ModuleDrawer) standard.ImageOption {
	switch d {
	case form.DrawerCircle:
		return standard.WithCircleShape()
	case form.DrawerRounded:
		return standard.WithCustomShape(&customShape{drawFunc: shapes.LiquidBlock()})
	case form.DrawerGappedSquare:
		return standard.WithCustomShape(&customShape{drawFunc: shapes.ChainBlock()})
	case form.DrawerHorizontalBars:
		return standard.WithCustomShape(&customShape{drawFunc: shapes.HStripeBlock(0.85)})
	case form.DrawerVerticalBars:
		return standard.WithCustomShape(&customShape{drawFunc: shapes.VStripeBlock(0.85)})
	}
	return nil
}

// parseColorParam parses "#RRGGBB", "RRGGBB" or "transparent".
func parseColorParam(param string) (color.RGBA, error) {
	if strings.ToLower(param) == "transparent" {
		return color.RGBA{0, 0, 0, 0}, nil
	}

	hex := strings.TrimPrefix(strings.TrimSpace(param), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("Invalid color: %s", echo(param))
	}

	r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
	g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
	b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return color.RGBA{}, fmt.Errorf("Invalid color: %s", echo(param))
	}
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}, nil
}

// echoPolicy strips markup from user input quoted back in error messages.
var echoPolicy = bluemonday.StrictPolicy()

func echo(v string) string {
	return html.UnescapeString(echoPolicy.Sanitize(v))
}

// generateUniqueFilename builds a collision-resistant name for scratch files.
func generateUniqueFilename(prefix, extension string) string {
	timestamp := time.Now().UnixNano()
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	return fmt.Sprintf("%s_%d_%x%s", prefix, timestamp, randomBytes, extension)
}

// saveUpload keeps a copy of the embedded image next to the artifacts so
// Close removes it with everything else.
func (h *Handler) saveUpload(c *gin.Context) {
	file, err := c.FormFile(form.FieldEmbeddedImage)
	if err != nil || file.Filename == "" {
		return
	}
	name := generateUniqueFilename("upload", filepath.Ext(file.Filename))
	path := filepath.Join(h.store.Dir(), name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		h.logger.Printf("[QR] save upload: %v", err)
		return
	}
	h.store.Track(name, path)
}

// customShape implements the IShape interface by wrapping drawing functions from the shapes package
type customShape struct {
	drawFunc func(ctx *standard.DrawContext)
}

// Draw implements the IShape interface
func (cs *customShape) Draw(ctx *standard.DrawContext) {
	cs.drawFunc(ctx)
}

// DrawFinder implements the IShape interface for finder patterns
func (cs *customShape) DrawFinder(ctx *standard.DrawContext) {
	cs.drawFunc(ctx)
}
