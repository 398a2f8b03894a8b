package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const MsgInvalidCredential = "Invalid Credential"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login обменивает логин и пароль на токен.
// Запрос идёт без Authorization; клиент для работы с задачами
// создаётся уже с полученным токеном.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", &Failure{Kind: KindValidation, Field: "username", Message: "Username must not be empty"}
	}
	if c.authPath == "" {
		return "", errors.New("путь авторизации не задан")
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.base.JoinPath(c.authPath), loginRequest{
		Username: username,
		Password: password,
	}, false)
	if err != nil {
		return "", err
	}

	status, body, err := c.do(req)
	if err != nil {
		if f, ok := AsFailure(err); ok && f.Kind == KindClient && f.Message == MsgRequestFailed {
			f.Message = MsgInvalidCredential
		}
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", NewDecodeError(status, err)
	}
	if resp.Token == "" {
		return "", NewDecodeError(status, errors.New("в ответе нет токена"))
	}
	return resp.Token, nil
}
