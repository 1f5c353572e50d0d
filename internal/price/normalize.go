package price

import (
	"fmt"
	"strings"
	"time"

	"github.com/hako/durafmt"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/poporinglife/price-bot/internal/catalog"
	"github.com/poporinglife/price-bot/internal/market"
)

const (
	unknownValue     = "Unknown"
	missingTimestamp = "-"

	staticAssetBaseURL  = "https://static.poporing.life/items/"
	placeholderImageURL = "https://via.placeholder.com/50x50?text=?"
)

// Result is the display-ready outcome of one item+market resolution. It is
// built per request, handed to the reply sink and discarded; adapters own
// all platform markup around it.
type Result struct {
	DisplayName string
	Price       string
	Volume      string
	Timestamp   string
	Footnote    string
	URL         string
	ImageURL    string

	Market   market.Market
	Icon     string
	ColorHex string
	ColorInt int
}

var grouped = message.NewPrinter(language.English)

// groupThousands renders n with comma thousands separators.
func groupThousands(n int64) string {
	return grouped.Sprintf("%d", n)
}

// relative renders a unix-seconds timestamp as a coarse human-relative
// phrase such as "3 hours" or "2 days".
func relative(ts int64, now time.Time) string {
	d := now.Sub(time.Unix(ts, 0))
	if d < 0 {
		d = -d
	}

	return durafmt.Parse(d.Truncate(time.Second)).LimitFirstN(1).String()
}

// BuildResult normalizes a raw price payload into display fields.
//
// footnoteFormat receives the relative last-known-price time as its single
// positional argument; it comes from the response templates so adapters can
// override the wording.
func BuildResult(it catalog.Item, m market.Market, p Payload, now time.Time, footnoteFormat string) Result {
	info, _ := market.Lookup(m)

	res := Result{
		DisplayName: it.DisplayName,
		URL:         info.SearchURL + it.Name,
		ImageURL:    imageURL(it.ImageURL),
		Market:      m,
		Icon:        info.Icon,
		ColorHex:    info.ColorHex,
		ColorInt:    info.ColorInt,
	}

	if p.Timestamp == 0 {
		res.Price = unknownValue
		res.Volume = unknownValue
		res.Timestamp = missingTimestamp

		return res
	}

	switch {
	case p.Price != 0:
		res.Price = groupThousands(p.Price)
	case p.LastKnownPrice == 0:
		res.Price = unknownValue
	default:
		res.Price = groupThousands(p.LastKnownPrice)
		res.Footnote = fmt.Sprintf(footnoteFormat, relative(p.LastKnownTimestamp, now))
	}

	if p.Volume < 0 {
		res.Volume = unknownValue
	} else {
		res.Volume = groupThousands(p.Volume)
	}

	res.Timestamp = relative(p.Timestamp, now)

	return res
}

func imageURL(raw string) string {
	switch {
	case raw == "":
		return placeholderImageURL
	case strings.HasPrefix(raw, "http"):
		return raw
	default:
		return staticAssetBaseURL + raw
	}
}
