package apiclient

import (
	"context"

	"github.com/go-while/go-modconsole/internal/models"
)

// AppealPage is one page of the appeals list
type AppealPage struct {
	Appeals    []models.Appeal
	Pagination *models.PaginationInfo
}

// Appeals lists appeals, filtered by status when status is non-empty. page is zero-based.
func (c *Client) Appeals(ctx context.Context, status models.AppealStatus, page, size int) (*AppealPage, error) {
	url := c.endpoints.Appeals(page, size)
	if status != "" {
		url = c.endpoints.AppealsByStatus(string(status), page, size)
	}
	resp := c.Get(ctx, url)
	if err := resp.Err(); err != nil {
		return nil, err
	}
	out := &AppealPage{Pagination: resp.Pagination(page, size)}
	if err := resp.DecodeList(&out.Appeals, "appeals"); err != nil {
		return nil, &Error{Kind: KindMalformed, Status: resp.Status, Message: MsgMalformed}
	}
	return out, nil
}

// Appeal loads one appeal with its comments
func (c *Client) Appeal(ctx context.Context, id string) (*models.Appeal, error) {
	return c.getAppeal(ctx, c.endpoints.Appeal(id))
}

// AppealStatus looks up the latest appeal of a player. It needs no token.
func (c *Client) AppealStatus(ctx context.Context, playerUUID string) (*models.Appeal, error) {
	return c.getAppeal(ctx, c.endpoints.AppealStatus(playerUUID))
}

func (c *Client) getAppeal(ctx context.Context, url string) (*models.Appeal, error) {
	resp := c.Get(ctx, url)
	if err := resp.Err(); err != nil {
		return nil, err
	}
	appeal := &models.Appeal{}
	err := resp.Decode("appeal", appeal)
	if err != nil {
		err = resp.DecodeData(appeal)
	}
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Status: resp.Status, Message: MsgMalformed}
	}
	return appeal, nil
}

// appealDecision carries both spellings of the staff response the backends accept
type appealDecision struct {
	Response      string `json:"response"`
	AdminResponse string `json:"adminResponse"`
}

// ApproveAppeal approves a pending appeal and unbans the player
func (c *Client) ApproveAppeal(ctx context.Context, id, response string) error {
	return c.Post(ctx, c.endpoints.ApproveAppeal(id), appealDecision{response, response}).Err()
}

// DenyAppeal denies a pending appeal
func (c *Client) DenyAppeal(ctx context.Context, id, response string) error {
	return c.Post(ctx, c.endpoints.DenyAppeal(id), appealDecision{response, response}).Err()
}

// CommentAppeal adds a staff comment
func (c *Client) CommentAppeal(ctx context.Context, id, comment string) error {
	return c.Post(ctx, c.endpoints.CommentAppeal(id), map[string]string{"comment": comment}).Err()
}

// SubmitAppeal files a public appeal and returns its id
func (c *Client) SubmitAppeal(ctx context.Context, sub models.AppealSubmission) (string, error) {
	resp := c.Post(ctx, c.endpoints.SubmitAppeal(), sub)
	if err := resp.Err(); err != nil {
		return "", err
	}
	return resp.String("appealId"), nil
}
