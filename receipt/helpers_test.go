package receipt

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"time"

	. "github.com/onsi/gomega"

	"github.com/AlexStarov/escpos-receipt/asset"
	"github.com/AlexStarov/escpos-receipt/layout"
	"github.com/AlexStarov/escpos-receipt/order"
	"github.com/AlexStarov/escpos-receipt/printer"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestEngine() *layout.Engine {
	engine, err := layout.NewEngine(layout.WithClock(fixedClock{time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)}))
	Expect(err).NotTo(HaveOccurred())
	return engine
}

// mapSource serves assets from memory.
type mapSource map[string][]byte

func (m mapSource) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, ok := m[ref]
	if !ok {
		return nil, asset.ErrNotFound
	}
	return data, nil
}

func logoPNG(w, h int) []byte {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	img.SetGray(0, 0, color.Gray{Y: 255})
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

// recordingDeliverer keeps every stream it is given.
type recordingDeliverer struct {
	streams []printer.Stream
	err     error
}

func (d *recordingDeliverer) Deliver(_ context.Context, s printer.Stream) (printer.Ack, error) {
	if d.err != nil {
		return printer.Ack{}, d.err
	}
	d.streams = append(d.streams, s)
	return printer.Ack{Transport: "test", Bytes: len(s), IssuedAt: time.Now()}, nil
}

func sampleOrder() order.Document {
	return order.Document{
		ShopName: "Corner Coffee",
		OrderID:  "A-1001",
		Lines: []order.Line{
			{PrimaryName: "Espresso", SecondaryName: "double", UnitPrice: 1000, Quantity: 3},
		},
		TotalAmount: 3000,
	}
}
