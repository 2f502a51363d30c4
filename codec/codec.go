// Package codec implements the ERC-8004 registration metadata format:
// the data:application/json;base64 URI scheme used as an on-chain token
// URI, and the canonical registration metadata shape.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DataURIPrefix is the exact prefix a metadata data URI must carry.
const DataURIPrefix = "data:application/json;base64,"

// RegistrationType identifies the registration-v1 metadata shape.
const RegistrationType = "https://eips.ethereum.org/EIPS/eip-8004#registration-v1"

// ErrFormat is returned when a data URI does not match the required
// prefix or its payload is not valid JSON.
var ErrFormat = errors.New("invalid data URI format")

// Service describes one endpoint an agent exposes.
type Service struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Version  string `json:"version,omitempty"`
}

// RegistrationMetadata is the canonical ERC-8004 registration object.
type RegistrationMetadata struct {
	Type           string    `json:"type"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Image          string    `json:"image"`
	Services       []Service `json:"services"`
	SupportedTrust []string  `json:"supportedTrust"`
}

// RegistrationOptions are the caller-supplied fields for
// BuildRegistrationMetadata. Name is mandatory.
type RegistrationOptions struct {
	Name           string
	Description    string
	Image          string
	Services       []Service
	SupportedTrust []string
}

// EncodeDataURI serializes metadata to JSON, base64-encodes it and
// prefixes the result with DataURIPrefix. Any JSON-marshalable value is
// accepted so both RegistrationMetadata and free-form maps round-trip.
func EncodeDataURI(metadata any) (string, error) {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeDataURI parses a data URI produced by EncodeDataURI back into a
// metadata object. It returns ErrFormat when the prefix does not match
// exactly, the payload is not valid base64, or the decoded payload is not
// valid JSON.
func DecodeDataURI(uri string) (map[string]any, error) {
	if !strings.HasPrefix(uri, DataURIPrefix) {
		return nil, ErrFormat
	}
	payload, err := base64.StdEncoding.DecodeString(uri[len(DataURIPrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	var metadata map[string]any
	if err := json.Unmarshal(payload, &metadata); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return metadata, nil
}

// IsDataURI reports whether uri uses the data URI scheme this codec
// understands.
func IsDataURI(uri string) bool {
	return strings.HasPrefix(uri, DataURIPrefix)
}

// BuildRegistrationMetadata applies the canonical defaults: empty
// description and image, no services, and supportedTrust defaulting to
// ["reputation"]. An empty name is rejected.
func BuildRegistrationMetadata(opts RegistrationOptions) (RegistrationMetadata, error) {
	if opts.Name == "" {
		return RegistrationMetadata{}, errors.New("registration metadata requires a name")
	}

	services := opts.Services
	if services == nil {
		services = []Service{}
	}
	trust := opts.SupportedTrust
	if trust == nil {
		trust = []string{"reputation"}
	}

	return RegistrationMetadata{
		Type:           RegistrationType,
		Name:           opts.Name,
		Description:    opts.Description,
		Image:          opts.Image,
		Services:       services,
		SupportedTrust: trust,
	}, nil
}
