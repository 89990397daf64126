package stock

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"incoin/domain/entities"
	"incoin/domain/utils"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// ErrNotEnoughHistory is returned when fewer than two price points exist
var ErrNotEnoughHistory = errors.New("not enough price history to draw a chart")

// ChartStyle defines the visual style of a price chart
type ChartStyle struct {
	Width   int
	Height  int
	Padding float64
	Line    [3]float64
	Up      [3]float64
	Down    [3]float64
}

// ChartGenerator renders stock price history as PNG line charts
type ChartGenerator struct {
	style    ChartStyle
	location *time.Location
}

// NewChartGenerator creates a chart generator that labels times in loc
func NewChartGenerator(loc *time.Location) *ChartGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &ChartGenerator{
		style: ChartStyle{
			Width:   480,
			Height:  260,
			Padding: 40,
			Line:    [3]float64{0.12, 0.56, 1.0},
			Up:      [3]float64{0.3, 0.85, 0.4},
			Down:    [3]float64{0.95, 0.35, 0.35},
		},
		location: loc,
	}
}

// Render draws the price history and returns the encoded PNG
func (g *ChartGenerator) Render(history []entities.PricePoint) ([]byte, error) {
	if len(history) < 2 {
		return nil, ErrNotEnoughHistory
	}

	minPrice, maxPrice := history[0].Price, history[0].Price
	for _, p := range history[1:] {
		minPrice = min(minPrice, p.Price)
		maxPrice = max(maxPrice, p.Price)
	}
	// Keep a flat series off the frame edges
	if minPrice == maxPrice {
		minPrice -= 10
		maxPrice += 10
	}

	w, h := float64(g.style.Width), float64(g.style.Height)
	pad := g.style.Padding
	plotW, plotH := w-pad*2, h-pad*2

	dc := gg.NewContext(g.style.Width, g.style.Height)
	dc.SetRGB(0.07, 0.08, 0.12)
	dc.Clear()

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	xAt := func(i int) float64 {
		return pad + plotW*float64(i)/float64(len(history)-1)
	}
	yAt := func(price int64) float64 {
		return pad + plotH*(1-float64(price-minPrice)/float64(maxPrice-minPrice))
	}

	// Grid with price labels
	dc.SetLineWidth(1)
	for i := 0; i <= 4; i++ {
		price := minPrice + (maxPrice-minPrice)*int64(i)/4
		y := yAt(price)
		dc.SetRGBA(1, 1, 1, 0.12)
		dc.DrawLine(pad, y, w-pad, y)
		dc.Stroke()
		dc.SetRGB(0.8, 0.8, 0.85)
		dc.DrawStringAnchored(utils.FormatCoins(price), pad-4, y, 1, 0.5)
	}

	dc.SetRGB(g.style.Line[0], g.style.Line[1], g.style.Line[2])
	dc.SetLineWidth(2.5)
	for i, p := range history {
		if i == 0 {
			dc.MoveTo(xAt(i), yAt(p.Price))
			continue
		}
		dc.LineTo(xAt(i), yAt(p.Price))
	}
	dc.Stroke()

	for i, p := range history {
		color := g.style.Up
		if i > 0 && p.Price < history[i-1].Price {
			color = g.style.Down
		}
		dc.SetRGB(color[0], color[1], color[2])
		dc.DrawCircle(xAt(i), yAt(p.Price), 4)
		dc.Fill()

		dc.SetRGB(0.8, 0.8, 0.85)
		dc.DrawStringAnchored(p.Timestamp.In(g.location).Format("15:04"), xAt(i), h-pad+14, 0.5, 0.5)
	}

	first, last := history[0].Price, history[len(history)-1].Price
	trend := g.style.Up
	if last < first {
		trend = g.style.Down
	}
	dc.SetRGB(trend[0], trend[1], trend[2])
	dc.DrawStringAnchored(fmt.Sprintf("%s -> %s", utils.FormatCoins(first), utils.FormatCoins(last)), w-pad, pad/2, 1, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
