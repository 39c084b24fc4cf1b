package gymsite

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"gymkeeper-backend/lib/htmlutil"
	"gymkeeper-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var ErrLoginFailed = fmt.Errorf("could not login with the given email")
var ErrNoCapacity = fmt.Errorf("there are no open positions for the selected class")

const bookingPagePath = "/site/Extern.php?sectiune=program"

// label of the control that flips the calendar to next week
const nextWeekLabel = "Umatoare"

// id of the frame the calendar table renders in
const calendarFrameId = "changer2"

// link the site shows after a rejected login
const loginRetryLabel = "Incearca din nou"

// Client is one browsing session against the gym site: a cookie jar,
// an identity, and the page interactions the scheduler needs. A client
// is owned by a single logical operation at a time; it is not safe for
// concurrent use.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
	Email   string
}

type ClientOptions struct {
	BaseUrl string
	Email   string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/gymsite/http")

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
		Email:   opts.Email,
	}
	return c, nil
}

// Close releases the session. The cookie jar is replaced so a recycled
// client never carries over the previous operation's identity.
func (c *Client) Close() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	c.Http.SetCookieJar(jar)
	return nil
}

// fetchDoc GETs a page and returns its parsed document along with the
// final URL after redirects, which is the base for resolving hrefs.
func (c *Client) fetchDoc(ctx context.Context, target string) (*goquery.Document, *url.URL, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, nil, err
	}
	return doc, res.RawResponse.Request.URL, nil
}

// FetchSlots extracts the bookable slots of the current and the next
// week. The calendar renders inside a frame, so each week is one fetch
// of the frame's own document; losing the frame context between the
// two passes would silently yield an empty list.
func (c *Client) FetchSlots(ctx context.Context) ([]Slot, error) {
	ctx, span := tracer.Start(ctx, "client:FetchSlots")
	defer span.End()

	doc, pageUrl, err := c.fetchDoc(ctx, bookingPagePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch booking page")
		return nil, err
	}

	nextWeekHref, ok := findAnchorByLabel(doc, nextWeekLabel)
	if !ok {
		span.SetStatus(codes.Error, "next week control missing")
		return nil, fmt.Errorf("booking page has no %q control", nextWeekLabel)
	}

	slots, err := c.slotsFromFrame(ctx, doc, pageUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract current week")
		return nil, err
	}

	nextDoc, nextUrl, err := c.fetchDoc(ctx, resolveHref(pageUrl, nextWeekHref))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to flip to next week")
		return nil, err
	}
	nextSlots, err := c.slotsFromFrame(ctx, nextDoc, nextUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract next week")
		return nil, err
	}

	return append(slots, nextSlots...), nil
}

func (c *Client) slotsFromFrame(ctx context.Context, doc *goquery.Document, pageUrl *url.URL) ([]Slot, error) {
	frameSrc := doc.Find("#" + calendarFrameId).First().AttrOr("src", "")
	if frameSrc == "" {
		return nil, fmt.Errorf("calendar frame %q not found", calendarFrameId)
	}

	frameDoc, frameUrl, err := c.fetchDoc(ctx, resolveHref(pageUrl, frameSrc))
	if err != nil {
		return nil, err
	}

	bookingLinks := fmt.Sprintf("a[href*='%s']", bookingLinkMarker)
	cells := frameDoc.Find("td").FilterFunction(func(_ int, cell *goquery.Selection) bool {
		return cell.Find(bookingLinks).Length() > 0
	})
	return ExtractSlots(frameUrl, cells.Nodes)
}

// Book performs the booking interaction for an extracted slot: open
// its target page, login, and follow the confirmation control. The
// confirm dialog the site raises in a browser has no server side, so
// following the control is already the accepted action.
func (c *Client) Book(ctx context.Context, slot Slot) error {
	ctx, span := tracer.Start(ctx, "client:Book")
	defer span.End()

	doc, pageUrl, err := c.fetchDoc(ctx, slot.Target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open slot target")
		return err
	}

	doc, pageUrl, err = c.login(ctx, doc, pageUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return err
	}

	confirm := doc.Find("table#hor-zebra1 a").First()
	if confirm.Length() == 0 {
		span.SetStatus(codes.Error, ErrNoCapacity.Error())
		return ErrNoCapacity
	}

	_, _, err = c.fetchDoc(ctx, resolveHref(pageUrl, confirm.AttrOr("href", "")))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to follow booking confirmation")
		return err
	}
	return nil
}

// FetchReservations logs in on the landing page and extracts the
// user's reservations table.
func (c *Client) FetchReservations(ctx context.Context) ([]Reservation, error) {
	ctx, span := tracer.Start(ctx, "client:FetchReservations")
	defer span.End()

	doc, pageUrl, err := c.fetchDoc(ctx, "/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch landing page")
		return nil, err
	}

	doc, pageUrl, err = c.login(ctx, doc, pageUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return nil, err
	}

	listHref := doc.Find("a[href*='" + bookingLinkMarker + "']").First().AttrOr("href", "")
	if listHref == "" {
		span.SetStatus(codes.Error, "reservations link missing")
		return nil, fmt.Errorf("no reservations link after login")
	}

	doc, pageUrl, err = c.fetchDoc(ctx, resolveHref(pageUrl, listHref))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open reservations page")
		return nil, err
	}

	return ExtractReservations(pageUrl, doc)
}

// Cancel follows a reservation's cancel control. As with booking, the
// browser-side confirm dialog needs no separate acceptance here.
func (c *Client) Cancel(ctx context.Context, reservation Reservation) error {
	ctx, span := tracer.Start(ctx, "client:Cancel")
	defer span.End()

	if reservation.CancelTarget == "" {
		return fmt.Errorf("reservation has no cancel control")
	}
	_, _, err := c.fetchDoc(ctx, reservation.CancelTarget)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to follow cancel control")
		return err
	}
	return nil
}

// login submits the email form found on the current page and verifies
// the site accepted it. The only failure affordance the site gives is
// a retry link on the post-submit page.
func (c *Client) login(ctx context.Context, doc *goquery.Document, pageUrl *url.URL) (*goquery.Document, *url.URL, error) {
	ctx, span := tracer.Start(ctx, "client:login")
	defer span.End()

	form := doc.Find("form").First()
	if form.Length() == 0 {
		return nil, nil, fmt.Errorf("no login form on page %q", pageUrl)
	}

	emailField := form.Find("input[name*='email']").First().AttrOr("name", "")
	if emailField == "" {
		return nil, nil, fmt.Errorf("login form has no email input")
	}

	action := resolveHref(pageUrl, form.AttrOr("action", ""))

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			emailField: c.Email,
		}).
		Post(action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login form")
		return nil, nil, err
	}

	next, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse post-login page")
		return nil, nil, err
	}

	if _, retry := findAnchorByLabel(next, loginRetryLabel); retry {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return nil, nil, ErrLoginFailed
	}

	return next, res.RawResponse.Request.URL, nil
}

func findAnchorByLabel(doc *goquery.Document, label string) (string, bool) {
	href := ""
	found := false
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if htmlutil.CleanText(a.Text()) == label {
			href = a.AttrOr("href", "")
			found = true
			return false
		}
		return true
	})
	return href, found
}
