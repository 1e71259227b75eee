package akeyless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	akeylesssdk "github.com/akeylesslabs/akeyless-go/v3"

	"github.com/systmms/akops/internal/logging"
)

// sdkClient covers the read-only inspection calls (list and describe) through
// the official SDK. It shares the Client's *http.Client, so TLS settings
// apply to it as well.
type sdkClient struct {
	apiClient *akeylesssdk.APIClient
}

func newSDKClient(baseURL string, httpClient *http.Client) *sdkClient {
	configuration := akeylesssdk.NewConfiguration()
	configuration.Servers = []akeylesssdk.ServerConfiguration{
		{URL: baseURL},
	}
	configuration.HTTPClient = httpClient

	return &sdkClient{apiClient: akeylesssdk.NewAPIClient(configuration)}
}

// ItemInfo is the metadata returned by DescribeItem.
type ItemInfo struct {
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Version      int       `json:"version"`
	LastModified time.Time `json:"last_modified,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
}

// ListItems lists item names under path.
func (c *Client) ListItems(ctx context.Context, token, path string) ([]string, error) {
	body := akeylesssdk.NewListItems()
	body.SetPath(path)
	body.SetToken(token)

	res, httpResp, err := c.sdk.apiClient.V2Api.ListItems(ctx).Body(*body).Execute()
	if err != nil {
		return nil, sdkError("/list-items", httpResp, err, token)
	}

	items := res.GetItems()
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.GetItemName()
	}
	return names, nil
}

// DescribeItem returns metadata about an item without reading its value.
func (c *Client) DescribeItem(ctx context.Context, token, name string) (*ItemInfo, error) {
	body := akeylesssdk.NewDescribeItem(name)
	body.SetToken(token)

	res, httpResp, err := c.sdk.apiClient.V2Api.DescribeItem(ctx).Body(*body).Execute()
	if err != nil {
		return nil, sdkError("/describe-item", httpResp, err, token)
	}

	info := &ItemInfo{
		Name: name,
		Type: res.GetItemType(),
	}
	if res.ModificationDate != nil {
		info.LastModified = *res.ModificationDate
	}
	if res.LastVersion != nil {
		info.Version = int(*res.LastVersion)
	} else if res.ItemVersions != nil {
		info.Version = len(*res.ItemVersions)
	}
	if res.ItemTags != nil {
		info.Tags = *res.ItemTags
	}
	return info, nil
}

// sdkError converts an SDK error into a RemoteError, preferring the vendor
// message carried in the response body.
func sdkError(endpoint string, resp *http.Response, err error, token string) error {
	rErr := &RemoteError{Endpoint: endpoint, Err: err}
	if resp != nil {
		rErr.StatusCode = resp.StatusCode
	}

	var apiErr interface{ Body() []byte }
	if errors.As(err, &apiErr) {
		rErr.Message = logging.Redact(vendorMessage(apiErr.Body(), err.Error()), []string{token})
	} else {
		rErr.Message = logging.Redact(fmt.Sprint(err), []string{token})
	}
	return rErr
}
