package isrcomponents

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/mohsenKh75/next-patterns/interfaces"
	"github.com/mohsenKh75/next-patterns/internal"
)

// DefaultConnectTimeout is the HTTP connection timeout that is used if HTTPConfigurationBuilder.ConnectTimeout()
// is not set.
const DefaultConnectTimeout = 3 * time.Second

// HTTPConfigurationBuilder contains methods for configuring the HTTP client used to call the
// catalog REST API.
//
//	httpConfig, err := isrcomponents.HTTPConfiguration().
//	    ConnectTimeout(5 * time.Second).
//	    UserAgent("my-storefront").
//	    CreateHTTPConfiguration()
type HTTPConfigurationBuilder struct {
	inited            bool
	connectTimeout    time.Duration
	headers           http.Header
	userAgent         string
	proxyURL          *url.URL
	caCerts           [][]byte
	caCertFiles       []string
	httpClientFactory func() *http.Client
}

// HTTPConfiguration returns a configuration builder for the HTTP client.
func HTTPConfiguration() *HTTPConfigurationBuilder {
	return &HTTPConfigurationBuilder{}
}

func (b *HTTPConfigurationBuilder) checkValid() bool {
	if b == nil {
		return false
	}
	if !b.inited {
		b.connectTimeout = DefaultConnectTimeout
		b.headers = make(http.Header)
		b.inited = true
	}
	return true
}

// CACert specifies a CA certificate to be added to the trusted root CA list for HTTPS requests,
// as PEM data.
func (b *HTTPConfigurationBuilder) CACert(certData []byte) *HTTPConfigurationBuilder {
	if b.checkValid() {
		b.caCerts = append(b.caCerts, certData)
	}
	return b
}

// CACertFile specifies a CA certificate file to be added to the trusted root CA list for HTTPS
// requests. The file is read once, when the configuration is created.
func (b *HTTPConfigurationBuilder) CACertFile(filePath string) *HTTPConfigurationBuilder {
	if b.checkValid() {
		b.caCertFiles = append(b.caCertFiles, filePath)
	}
	return b
}

// ConnectTimeout sets the connection and request timeout. The default is DefaultConnectTimeout.
// A value of zero or less restores the default.
func (b *HTTPConfigurationBuilder) ConnectTimeout(connectTimeout time.Duration) *HTTPConfigurationBuilder {
	if b.checkValid() {
		if connectTimeout <= 0 {
			b.connectTimeout = DefaultConnectTimeout
		} else {
			b.connectTimeout = connectTimeout
		}
	}
	return b
}

// Header specifies a custom HTTP header that should be added to all requests. Repeated calls with
// the same name replace the earlier value.
func (b *HTTPConfigurationBuilder) Header(name string, value string) *HTTPConfigurationBuilder {
	if b.checkValid() {
		b.headers.Set(name, value)
	}
	return b
}

// HTTPClientFactory specifies a function for creating each HTTP client instance. When this is
// set, all the transport options of the builder are ignored; only the headers still apply.
func (b *HTTPConfigurationBuilder) HTTPClientFactory(httpClientFactory func() *http.Client) *HTTPConfigurationBuilder {
	if b.checkValid() {
		b.httpClientFactory = httpClientFactory
	}
	return b
}

// ProxyURL specifies a proxy URL to be used for all requests. This overrides any setting of the
// HTTP_PROXY, HTTPS_PROXY, or NO_PROXY environment variables.
func (b *HTTPConfigurationBuilder) ProxyURL(proxyURL url.URL) *HTTPConfigurationBuilder {
	if b.checkValid() {
		u := proxyURL
		b.proxyURL = &u
	}
	return b
}

// UserAgent specifies an additional User-Agent header value to send with HTTP requests.
func (b *HTTPConfigurationBuilder) UserAgent(userAgent string) *HTTPConfigurationBuilder {
	if b.checkValid() {
		b.userAgent = userAgent
	}
	return b
}

// CreateHTTPConfiguration returns the configured HTTPConfiguration. It fails only if a CA
// certificate cannot be read or parsed.
func (b *HTTPConfigurationBuilder) CreateHTTPConfiguration() (interfaces.HTTPConfiguration, error) {
	if !b.checkValid() {
		defaults := HTTPConfigurationBuilder{}
		return defaults.CreateHTTPConfiguration()
	}

	headers := b.headers.Clone()
	userAgent := "CatalogClient/" + internal.CatalogVersion
	if b.userAgent != "" {
		userAgent = userAgent + " " + b.userAgent
	}
	headers.Set("User-Agent", userAgent)

	if b.httpClientFactory != nil {
		return interfaces.HTTPConfiguration{DefaultHeaders: headers, CreateHTTPClient: b.httpClientFactory}, nil
	}

	var certPool *x509.CertPool
	if len(b.caCerts) > 0 || len(b.caCertFiles) > 0 {
		certPool = x509.NewCertPool()
		for _, f := range b.caCertFiles {
			data, err := os.ReadFile(f) //nolint:gosec // the file is named by the application
			if err != nil {
				return interfaces.HTTPConfiguration{}, err
			}
			if !certPool.AppendCertsFromPEM(data) {
				return interfaces.HTTPConfiguration{}, errors.New("invalid CA certificate data in " + f)
			}
		}
		for _, data := range b.caCerts {
			if !certPool.AppendCertsFromPEM(data) {
				return interfaces.HTTPConfiguration{}, errors.New("invalid CA certificate data")
			}
		}
	}

	connectTimeout := b.connectTimeout
	proxyURL := b.proxyURL
	return interfaces.HTTPConfiguration{
		DefaultHeaders: headers,
		CreateHTTPClient: func() *http.Client {
			return newHTTPClient(connectTimeout, proxyURL, certPool)
		},
	}, nil
}

func newHTTPClient(connectTimeout time.Duration, proxyURL *url.URL, certPool *x509.CertPool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 1 * time.Minute,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	if certPool != nil {
		transport.TLSClientConfig = &tls.Config{RootCAs: certPool, MinVersion: tls.VersionTLS12}
	}
	return &http.Client{Timeout: connectTimeout, Transport: transport}
}
