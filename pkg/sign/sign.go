// Package sign contains commands to create and check request signatures by hand,
// e.g. for testing a webhook receiver.
package sign

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heathcliff26/webhook-validator/pkg/validator"
	"github.com/spf13/cobra"
)

const (
	flagNameToken     = "token"
	flagNameURL       = "url"
	flagNameParam     = "param"
	flagNameBody      = "body"
	flagNameBodyFile  = "body-file"
	flagNameSignature = "signature"

	// Used as auth token when the token flag is not set
	envAuthToken = "WEBHOOK_AUTH_TOKEN"
)

var ErrInvalidSignature = errors.New("signature is invalid")

// Input shared by the sign and verify commands
type request struct {
	token   string
	url     string
	params  map[string]string
	body    []byte
	hasBody bool
}

// Create the sign command
func NewSignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sign",
		Short:        "Compute the signature for a webhook request",
		Long:         "Compute the signature for a webhook request. When a body is given, the bodySHA256 parameter is added to the url before signing.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRequest(cmd)
			if err != nil {
				return err
			}

			if !req.hasBody {
				fmt.Fprintf(cmd.OutOrStdout(), "Signature: %s\n", validator.ComputeWithParams(req.token, req.url, req.params))
				return nil
			}

			u, err := validator.BodyHashURL(req.url, req.body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "URL: %s\n", u)
			fmt.Fprintf(cmd.OutOrStdout(), "Signature: %s\n", validator.ComputeForURL(req.token, u))
			return nil
		},
	}
	addRequestFlags(cmd)

	return cmd
}

// Create the verify command
func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "verify",
		Short:        "Check the signature of a webhook request",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRequest(cmd)
			if err != nil {
				return err
			}
			signature, err := cmd.Flags().GetString(flagNameSignature)
			if err != nil {
				return fmt.Errorf("failed to get signature flag: %w", err)
			}

			v, err := validator.NewRequestValidator(req.token)
			if err != nil {
				return err
			}

			var payload validator.Request = validator.FormRequest{Params: req.params}
			if req.hasBody {
				payload = validator.RawBodyRequest{Body: req.body}
			}

			if !v.Validate(req.url, payload, signature) {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return ErrInvalidSignature
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	addRequestFlags(cmd)
	cmd.Flags().StringP(flagNameSignature, "s", "", "The claimed signature of the request")
	_ = cmd.MarkFlagRequired(flagNameSignature)

	return cmd
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagNameToken, "t", "", "The auth token, defaults to $"+envAuthToken)
	cmd.Flags().StringP(flagNameURL, "u", "", "The full url of the request, including the query")
	cmd.Flags().StringArrayP(flagNameParam, "p", nil, "Form parameter as key=value, can be repeated")
	cmd.Flags().String(flagNameBody, "", "Raw request body")
	cmd.Flags().String(flagNameBodyFile, "", "Read the raw request body from a file, '-' reads from stdin")

	_ = cmd.MarkFlagRequired(flagNameURL)
	cmd.MarkFlagsMutuallyExclusive(flagNameBody, flagNameBodyFile)
	cmd.MarkFlagsMutuallyExclusive(flagNameParam, flagNameBody)
	cmd.MarkFlagsMutuallyExclusive(flagNameParam, flagNameBodyFile)
}

func readRequest(cmd *cobra.Command) (request, error) {
	var req request
	var err error

	req.token, err = cmd.Flags().GetString(flagNameToken)
	if err != nil {
		return request{}, fmt.Errorf("failed to get token flag: %w", err)
	}
	if req.token == "" {
		req.token = os.Getenv(envAuthToken)
	}
	if req.token == "" {
		return request{}, fmt.Errorf("no auth token given, use --%s or $%s", flagNameToken, envAuthToken)
	}

	req.url, err = cmd.Flags().GetString(flagNameURL)
	if err != nil {
		return request{}, fmt.Errorf("failed to get url flag: %w", err)
	}

	params, err := cmd.Flags().GetStringArray(flagNameParam)
	if err != nil {
		return request{}, fmt.Errorf("failed to get param flag: %w", err)
	}
	req.params, err = parseParams(params)
	if err != nil {
		return request{}, err
	}

	if cmd.Flags().Changed(flagNameBody) {
		body, err := cmd.Flags().GetString(flagNameBody)
		if err != nil {
			return request{}, fmt.Errorf("failed to get body flag: %w", err)
		}
		req.body = []byte(body)
		req.hasBody = true
	}

	if cmd.Flags().Changed(flagNameBodyFile) {
		path, err := cmd.Flags().GetString(flagNameBodyFile)
		if err != nil {
			return request{}, fmt.Errorf("failed to get body-file flag: %w", err)
		}
		req.body, err = readBody(cmd, path)
		if err != nil {
			return request{}, err
		}
		req.hasBody = true
	}

	return req, nil
}

func readBody(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		body, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read body from stdin: %w", err)
		}
		return body, nil
	}

	// #nosec G304 -- Local users can decide on their file path themselves.
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read body file '%s': %w", path, err)
	}
	return body, nil
}

// Parse key=value pairs, values may contain '='
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter '%s', expected key=value", pair)
		}
		if _, exists := params[key]; exists {
			return nil, fmt.Errorf("duplicate parameter '%s'", key)
		}
		params[key] = value
	}
	return params, nil
}
