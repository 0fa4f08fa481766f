// Package payout holds the client for the external transfer API. The
// provider actually moves the money; this boundary only reports whether
// the disbursement call confirmed success. Retries live on the provider
// side.
package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type TransferRequest struct {
	RecipientID string `json:"recipient_id"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HTTPPayoutDispatcher struct {
	Address string
	client  *http.Client
}

func NewHTTPPayoutDispatcher(address string) *HTTPPayoutDispatcher {
	return &HTTPPayoutDispatcher{
		Address: address,
		client:  http.DefaultClient,
	}
}

func (d *HTTPPayoutDispatcher) Transfer(ctx context.Context, recipientID string, amount int64, reference string) error {
	requestBodyBytes, err := json.Marshal(TransferRequest{
		RecipientID: recipientID,
		Amount:      amount,
		Reference:   reference,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/transfers", d.Address), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	var errorResponse ErrorResponse
	if err := json.Unmarshal(responseBodyBytes, &errorResponse); err != nil {
		return fmt.Errorf("transfer failed with status %d", response.StatusCode)
	}
	return errors.New(errorResponse.Error)
}
