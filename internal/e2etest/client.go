package e2etest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/descope/virtualwebauthn"
	"github.com/myrjola/habitapp/internal/errors"
)

var ErrUnexpectedStatus = errors.NewSentinel("unexpected status code")

type Client struct {
	client        *http.Client
	url           string
	rp            virtualwebauthn.RelyingParty
	authenticator virtualwebauthn.Authenticator
}

// NewClient creates a WebAuthn-aware HTTP client.
//
// rpID and rpOrigin should correspond to the WebAuthn setup on the server.
func NewClient(url, rpID, rpOrigin string) (*Client, error) {
	return newClient(url, rpID, rpOrigin, http.DefaultTransport)
}

// NewClientWithSecFetchSite creates a client that sends the given Sec-Fetch-Site header with every request the way a
// browser would. Use "cross-site" to simulate a forged request from another origin.
func NewClientWithSecFetchSite(url, rpID, rpOrigin, secFetchSite string) (*Client, error) {
	return newClient(url, rpID, rpOrigin, secFetchSiteTransport{next: http.DefaultTransport, value: secFetchSite})
}

func newClient(url, rpID, rpOrigin string, transport http.RoundTripper) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}
	return &Client{
		client:        &http.Client{Transport: transport, Jar: jar}, //nolint:exhaustruct // defaults are fine.
		url:           url,
		rp:            virtualwebauthn.RelyingParty{Name: "Habits", ID: rpID, Origin: rpOrigin},
		authenticator: virtualwebauthn.NewAuthenticator(),
	}, nil
}

type secFetchSiteTransport struct {
	next  http.RoundTripper
	value string
}

func (t secFetchSiteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Sec-Fetch-Site", t.value)
	return t.next.RoundTrip(r) //nolint:wrapcheck // transparent transport.
}

// unsafeCookieJar accepts Secure cookies over plain HTTP so that the test server does not need TLS.
type unsafeCookieJar struct {
	*cookiejar.Jar
}

func newUnsafeCookieJar() (*unsafeCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}
	return &unsafeCookieJar{Jar: jar}, nil
}

func (j *unsafeCookieJar) SetCookies(u *neturl.URL, cookies []*http.Cookie) {
	for _, c := range cookies {
		c.Secure = false
	}
	j.Jar.SetCookies(u, cookies)
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	deadline := time.Now().Add(time.Second)
	for {
		resp, err := c.Get(ctx, urlPath)
		if err == nil {
			closeErr := resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return closeErr
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "wait for ready")
		default:
			if time.Now().After(deadline) {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+urlPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request", slog.String("path", urlPath))
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document. Responses other than 200 OK are errors.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	return documentFromResponse(resp)
}

// post sends body to urlPath and fails unless the server responds with 200 OK.
func (c *Client) post(ctx context.Context, urlPath, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request", slog.String("path", urlPath))
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Wrap(ErrUnexpectedStatus, fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			slog.String("path", urlPath), slog.Int("status", resp.StatusCode))
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, urlPath, body string) ([]byte, error) {
	resp, err := c.post(ctx, urlPath, "application/json", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(resp.Body)
	return out, errors.Join(err, resp.Body.Close())
}

// Register registers a new WebAuthn credential with the server and returns the front page document.
func (c *Client) Register(ctx context.Context) (*goquery.Document, error) {
	if _, err := c.GetDoc(ctx, "/"); err != nil {
		return nil, errors.Wrap(err, "get home")
	}

	body, err := c.postJSON(ctx, "/api/registration/start", "")
	if err != nil {
		return nil, errors.Wrap(err, "start registration")
	}
	attOpts, err := virtualwebauthn.ParseAttestationOptions(string(body))
	if err != nil {
		return nil, errors.Wrap(err, "parse attestation options")
	}

	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)
	attestation := virtualwebauthn.CreateAttestationResponse(c.rp, c.authenticator, credential, *attOpts)
	if _, err = c.postJSON(ctx, "/api/registration/finish", attestation); err != nil {
		return nil, errors.Wrap(err, "finish registration")
	}

	// The credential is now ready for logging in.
	c.authenticator.AddCredential(credential)
	// Discoverable login needs the user handle.
	c.authenticator.Options.UserHandle = []byte(attOpts.UserID)

	return c.GetDoc(ctx, "/")
}

// Login logs in to the server given there is a registered WebAuthn credential and returns the front page document.
func (c *Client) Login(ctx context.Context) (*goquery.Document, error) {
	body, err := c.postJSON(ctx, "/api/login/start", "")
	if err != nil {
		return nil, errors.Wrap(err, "start login")
	}
	asOpts, err := virtualwebauthn.ParseAssertionOptions(string(body))
	if err != nil {
		return nil, errors.Wrap(err, "parse assertion options")
	}
	if len(c.authenticator.Credentials) == 0 {
		return nil, errors.New("no credential registered")
	}
	assertion := virtualwebauthn.CreateAssertionResponse(c.rp, c.authenticator, c.authenticator.Credentials[0], *asOpts)
	if _, err = c.postJSON(ctx, "/api/login/finish", assertion); err != nil {
		return nil, errors.Wrap(err, "finish login")
	}
	return c.GetDoc(ctx, "/")
}

// Logout submits the logout form on the preferences page.
func (c *Client) Logout(ctx context.Context) (*goquery.Document, error) {
	doc, err := c.GetDoc(ctx, "/preferences")
	if err != nil {
		return nil, errors.Wrap(err, "get preferences")
	}
	if doc, err = c.SubmitForm(ctx, doc, "/api/logout", nil); err != nil {
		return nil, errors.Wrap(err, "submit logout form")
	}
	return doc, nil
}

// SubmitForm submits the form in doc with action formActionURLPath and returns the response document.
//
// formFields maps label text to value. Hidden inputs of the form are submitted as they are.
func (c *Client) SubmitForm(
	ctx context.Context,
	doc *goquery.Document,
	formActionURLPath string,
	formFields map[string]string,
) (*goquery.Document, error) {
	form, err := FindForm(doc, formActionURLPath)
	if err != nil {
		return nil, errors.Wrap(err, "find form")
	}

	formData := neturl.Values{}
	form.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name, hasName := input.Attr("name")
		value, _ := input.Attr("value")
		if hasName {
			formData.Set(name, value)
		}
	})
	for labelText, value := range formFields {
		var input *goquery.Selection
		if input, err = FindInputForLabel(form, labelText); err != nil {
			if input, err = FindSelectForLabel(form, labelText); err != nil {
				return nil, errors.Wrap(err, "find input for label", slog.String("label", labelText))
			}
		}
		name, exists := input.Attr("name")
		if !exists {
			return nil, errors.New(fmt.Sprintf("input has no name attribute (label: %s, form_action: %s)",
				labelText, formActionURLPath))
		}
		formData.Set(name, value)
	}

	resp, err := c.post(ctx, formActionURLPath, "application/x-www-form-urlencoded",
		strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, err
	}
	return documentFromResponse(resp)
}

func documentFromResponse(resp *http.Response) (*goquery.Document, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(ErrUnexpectedStatus, fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			slog.Int("status", resp.StatusCode))
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	doc.Url = resp.Request.URL
	return doc, nil
}
