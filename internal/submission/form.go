package submission

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Catmanpooh/oort-hackathon/internal/factory"
)

// Wallet is the connected account as reported by the wallet integration.
type Wallet interface {
	Address() string
	IsConnected() bool
}

// StaticWallet is a Wallet whose state is fixed at construction.
type StaticWallet struct {
	Addr      string
	Connected bool
}

func (w StaticWallet) Address() string  { return w.Addr }
func (w StaticWallet) IsConnected() bool { return w.Connected }

type StorageMode int

const (
	// ModeUpload stores fresh assets with the backend.
	ModeUpload StorageMode = iota
	// ModeExternalURI points at an already hosted token URI.
	ModeExternalURI
)

func (m StorageMode) String() string {
	switch m {
	case ModeUpload:
		return "upload"
	case ModeExternalURI:
		return "external_uri"
	default:
		return "unknown"
	}
}

// Form holds the raw values of one submit action.
type Form struct {
	ProjectName     string
	ProjectSymbol   string
	StoreAssets     bool
	ProjectImage    *factory.File
	ProjectJSON     *factory.File
	ProjectTokenURI string
}

// Request is a validated Form bound to the wallet that submitted it.
type Request struct {
	ProjectName   string
	ProjectSymbol string
	Mode          StorageMode
	Image         *factory.File
	JSON          *factory.File
	WalletAddress string
}

func (r *Request) HasAssets() bool {
	return r.Image != nil || r.JSON != nil
}

// ObjectName is the stored name of the asset being registered.
func (r *Request) ObjectName() string {
	if r.Image == nil {
		return ""
	}
	return r.Image.Name
}

const (
	RuleRequired  = "required"
	RuleMinLength = "min_length"
	RuleMaxLength = "max_length"
	RulePattern   = "pattern"
)

// The host class is the ASCII range 0-z, so '_' and ':' pass, and the TLD
// separator is any character.
var tokenURIPattern = regexp.MustCompile(`^((?:ipfs|storj|stroj|https?)://)?([0-z.\-]+).([a-z]{2,})$`)

// CheckTokenURI reports whether uri looks like a token URI: an optional
// ipfs/storj/http(s) scheme, a host and a TLD.
func CheckTokenURI(uri string) error {
	if n := utf8.RuneCountInString(uri); n == 0 {
		return &ValidationError{Field: "projectTokenUri", Rule: RuleRequired}
	} else if n > 255 {
		return &ValidationError{Field: "projectTokenUri", Rule: RuleMaxLength}
	}
	if !tokenURIPattern.MatchString(uri) {
		return &ValidationError{Field: "projectTokenUri", Rule: RulePattern}
	}
	return nil
}

// Validate checks a form before any network call. Checks run in a fixed
// order and the first failure is returned: wallet connection, the external
// token URI stub, then field shapes.
func Validate(wallet Wallet, form Form) (*Request, error) {
	if wallet == nil || !wallet.IsConnected() {
		return nil, ErrNotConnected
	}

	tokenURI := strings.TrimSpace(form.ProjectTokenURI)
	if tokenURI != "" {
		return nil, ErrUnsupportedFeature
	}

	address := strings.TrimSpace(wallet.Address())
	if address == "" {
		return nil, &ValidationError{Field: "walletAddress", Rule: RuleRequired}
	}

	name := strings.TrimSpace(form.ProjectName)
	if err := checkLength("projectName", name, 3, 63); err != nil {
		return nil, err
	}

	symbol := strings.TrimSpace(form.ProjectSymbol)
	if err := checkLength("projectSymbol", symbol, 1, 4); err != nil {
		return nil, err
	}

	if !form.StoreAssets {
		// External URI mode: a non-empty URI was turned away above, so only
		// its absence is left to report.
		return nil, &ValidationError{Field: "projectTokenUri", Rule: RuleRequired}
	}

	if form.ProjectImage == nil || form.ProjectImage.Name == "" {
		return nil, &ValidationError{Field: "projectImage", Rule: RuleRequired}
	}

	req := &Request{
		ProjectName:   name,
		ProjectSymbol: symbol,
		Mode:          ModeUpload,
		Image:         form.ProjectImage,
		WalletAddress: address,
	}
	if form.ProjectJSON != nil && form.ProjectJSON.Name != "" {
		req.JSON = form.ProjectJSON
	}

	return req, nil
}

func checkLength(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		return &ValidationError{Field: field, Rule: RuleRequired}
	case n < minLen:
		return &ValidationError{Field: field, Rule: RuleMinLength}
	case n > maxLen:
		return &ValidationError{Field: field, Rule: RuleMaxLength}
	}
	return nil
}
