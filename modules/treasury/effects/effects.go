package effects

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"treasury-node/lib/logger"

	result "github.com/JustinKnueppel/go-result"
)

// Disbursement is the external effect of an approved action: deliver Value to
// Target along with the opaque payload fixed at submission.
type Disbursement struct {
	Index  uint64 `json:"index"`
	Cid    string `json:"cid"`
	Target string `json:"target"`
	Value  uint64 `json:"value"`
	Data   []byte `json:"data"`
}

type Receipt struct {
	Reference string `json:"reference"`
}

// Dispatcher performs the external side of an action execution. The engine
// interprets an Err result as effect failure and rolls the record back to
// unexecuted so it can be retried.
type Dispatcher interface {
	Dispatch(disb Disbursement) result.Result[Receipt]
}

type httpDispatcher struct {
	url    string
	client *http.Client
	log    logger.Logger
}

var _ Dispatcher = &httpDispatcher{}

func NewHttpDispatcher(url string, log logger.Logger) Dispatcher {
	return &httpDispatcher{
		url: url,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (hd *httpDispatcher) Dispatch(disb Disbursement) result.Result[Receipt] {
	body, err := json.Marshal(map[string]interface{}{
		"index":  disb.Index,
		"cid":    disb.Cid,
		"target": disb.Target,
		"value":  disb.Value,
		"data":   base64.StdEncoding.EncodeToString(disb.Data),
	})
	if err != nil {
		return result.Err[Receipt](err)
	}

	resp, err := hd.client.Post(hd.url, "application/json", bytes.NewReader(body))
	if err != nil {
		hd.log.Error("effect dispatch failed", disb.Cid, err)
		return result.Err[Receipt](err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		hd.log.Error("effect target rejected disbursement", disb.Cid, resp.StatusCode)
		return result.Err[Receipt](fmt.Errorf("effect target returned status %d", resp.StatusCode))
	}

	receipt := Receipt{}
	json.NewDecoder(resp.Body).Decode(&receipt)

	hd.log.Debug("effect dispatched", disb.Cid, receipt.Reference)
	return result.Ok(receipt)
}
