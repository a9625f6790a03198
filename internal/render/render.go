// Package render formats pricing quotes for output.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/lymq17/Antipatrones/internal/domain/pricing"
	"github.com/lymq17/Antipatrones/internal/domain/report"
)

// Format selects the report representation.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by New for an unsupported Format.
var ErrUnknownFormat = errors.New("unknown report format")

const amountPlaces = 2

var (
	_ report.Presenter = (*TextPresenter)(nil)
	_ report.Presenter = (*JSONPresenter)(nil)
)

// New returns the presenter for f writing to w.
func New(f Format, w io.Writer) (report.Presenter, error) {
	switch f {
	case FormatText:
		return NewText(w), nil
	case FormatJSON:
		return NewJSON(w), nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", f)
	}
}

// TextPresenter writes a human-readable block per user.
type TextPresenter struct {
	w io.Writer
}

// NewText returns a TextPresenter writing to w.
func NewText(w io.Writer) *TextPresenter {
	return &TextPresenter{w: w}
}

// Present writes one block per quote:
//
//	[1] Ana - tier=gold
//	Discount: 18.52
//	Domestic shipping: 11.00
//	International shipping: 13.00
//
// followed by a blank line.
func (p *TextPresenter) Present(ctx context.Context, quotes []pricing.Quote) error {
	var b strings.Builder
	for _, q := range quotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(&b, "[%d] %s - tier=%s\n", q.User.ID, q.User.Name, q.User.Tier)
		fmt.Fprintf(&b, "Discount: %s\n", amount(q.Discount))
		for _, s := range q.Shipping {
			fmt.Fprintf(&b, "%s shipping: %s\n", classLabel(s.Class), amount(s.Cost))
		}
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(p.w, b.String()); err != nil {
		return errors.Wrap(err, "write text report")
	}
	return nil
}

// JSONPresenter writes the quotes as a single JSON array.
type JSONPresenter struct {
	w io.Writer
}

// NewJSON returns a JSONPresenter writing to w.
func NewJSON(w io.Writer) *JSONPresenter {
	return &JSONPresenter{w: w}
}

// Present writes
//
//	[{"id":1,"name":"Ana","tier":"gold","discount":"18.52","shipping":{"domestic":"11.00"}}]
//
// with amounts as fixed two-decimal strings.
func (p *JSONPresenter) Present(ctx context.Context, quotes []pricing.Quote) error {
	var e jx.Encoder
	e.ArrStart()
	for _, q := range quotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(q.User.ID)
		e.FieldStart("name")
		e.Str(q.User.Name)
		e.FieldStart("tier")
		e.Str(string(q.User.Tier))
		e.FieldStart("discount")
		e.Str(amount(q.Discount))
		e.FieldStart("shipping")
		e.ObjStart()
		for _, s := range q.Shipping {
			e.FieldStart(s.Class.String())
			e.Str(amount(s.Cost))
		}
		e.ObjEnd()
		e.ObjEnd()
	}
	e.ArrEnd()

	out := append(e.Bytes(), '\n')
	if _, err := p.w.Write(out); err != nil {
		return errors.Wrap(err, "write json report")
	}
	return nil
}

func amount(v decimal.Decimal) string {
	return v.StringFixed(amountPlaces)
}

func classLabel(c pricing.Class) string {
	name := c.String()
	return strings.ToUpper(name[:1]) + name[1:]
}
