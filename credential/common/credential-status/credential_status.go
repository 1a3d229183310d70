package credentialstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/multiformats/go-multibase"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/provider"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/util"
)

// ErrUnsupportedStatusType is returned for credentialStatus entries of an unknown type.
var ErrUnsupportedStatusType = errors.New("unsupported credential status type")

var log = logrus.WithField("component", "credential-status")

// Client fetches status list credentials and checks entries against them.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a status client. A nil httpClient selects the instrumented default.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = provider.NewHTTPClient(provider.DefaultTimeout)
	}
	return &Client{httpClient: httpClient}
}

// IsSet fetches the status list of entry and reports whether its bit is set, i.e. whether the
// credential is revoked or suspended depending on the purpose. The list is trusted as fetched;
// callers that need its proof checked use FetchStatusListCredential and Check.
func (c *Client) IsSet(ctx context.Context, entry Entry) (bool, error) {
	if err := entry.Validate(); err != nil {
		return false, err
	}

	list, err := c.FetchStatusListCredential(ctx, entry.StatusListCredential)
	if err != nil {
		return false, err
	}
	return Check(entry, list)
}

// Check reports whether the bit entry points at is set in list.
func Check(entry Entry, list *StatusListCredential) (bool, error) {
	if err := entry.Validate(); err != nil {
		return false, err
	}
	if list == nil {
		return false, fmt.Errorf("status list credential is nil")
	}

	subject := list.CredentialSubject
	if entry.StatusPurpose != "" && subject.StatusPurpose != "" && entry.StatusPurpose != subject.StatusPurpose {
		return false, fmt.Errorf("status purpose %q does not match status list purpose %q", entry.StatusPurpose, subject.StatusPurpose)
	}

	position, _ := strconv.Atoi(entry.StatusListIndex)
	return IsSet(position, subject.EncodedList)
}

// Validate checks the entry type and index.
func (e Entry) Validate() error {
	if e.Type != StatusList2021Entry && e.Type != BitstringStatusListEntry {
		return errors.Wrap(ErrUnsupportedStatusType, e.Type)
	}
	position, err := strconv.Atoi(e.StatusListIndex)
	if err != nil || position < 0 {
		return fmt.Errorf("invalid statusListIndex %q", e.StatusListIndex)
	}
	return nil
}

// FetchStatusListCredential fetches and parses the status list credential
// located at the given statusListCredential URL. The response body is bounded by
// util.MaxResponseSize.
func (c *Client) FetchStatusListCredential(ctx context.Context, statusListCredentialURL string) (*StatusListCredential, error) {
	if statusListCredentialURL == "" {
		return nil, fmt.Errorf("statusListCredential URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusListCredentialURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status list credential request: %w", err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call status list credential endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status list credential API returned non-200 status: %s", resp.Status)
	}

	body, err := util.ReadLimited(resp.Body, util.MaxResponseSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read status list credential response body: %w", err)
	}

	raw, err := jsonmap.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal status list credential JSON: %w", err)
	}
	if data, ok := jsonmap.AsObject(raw["data"]); ok {
		raw = data
	}

	data, err := raw.ToJSON()
	if err != nil {
		return nil, err
	}

	var result StatusListCredential
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status list credential JSON: %w", err)
	}
	if result.CredentialSubject.EncodedList == "" {
		return nil, fmt.Errorf("status list credential %s has no encodedList", statusListCredentialURL)
	}
	result.Raw = raw

	log.Debugf("fetched status list %s", statusListCredentialURL)
	return &result, nil
}

// IsSet reads the bit at position from a GZIP-compressed, base64url encoded bitstring. Bit 0
// is the most significant bit of the first byte.
func IsSet(position int, encodedList string) (bool, error) {
	bitstring, err := DecodeList(encodedList)
	if err != nil {
		return false, err
	}

	byteIndex := position / 8
	if position < 0 || byteIndex >= len(bitstring) {
		return false, fmt.Errorf("status list index %d out of range", position)
	}
	bitIndex := 7 - position%8
	return (bitstring[byteIndex]>>bitIndex)&1 == 1, nil
}

// DecodeList decompresses an encodedList. Multibase base64url ("u" prefix) and plain
// unpadded base64url encodings are accepted.
func DecodeList(encodedList string) ([]byte, error) {
	if strings.HasPrefix(encodedList, "u") {
		if _, compressed, err := multibase.Decode(encodedList); err == nil {
			if bitstring, err := util.Decompress(compressed); err == nil {
				return bitstring, nil
			}
		}
	}

	bitstring, err := util.DecompressFromBase64URL(encodedList)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encodedList: %w", err)
	}
	return bitstring, nil
}

// EncodeList compresses a bitstring into the unpadded base64url form used by StatusList2021.
func EncodeList(bitstring []byte) (string, error) {
	return util.CompressToBase64URL(bitstring)
}
