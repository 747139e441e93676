package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dto"
)

var (
	ErrInstanceUnknown  = errors.New("实例描述服务无此实例代码")
	ErrInstanceResponse = errors.New("实例描述服务响应异常")
)

const maxDescribeBody = 1 << 20 // 1MB

// HTTPInstanceDescriber 通过 HTTP JSON 接口描述课程实例
// GET {baseURL}/instances/{code} → {"delivery": {...}, "periods": {...}}
type HTTPInstanceDescriber struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPInstanceDescriber 创建 HTTPInstanceDescriber；timeout<=0 时使用 5s
func NewHTTPInstanceDescriber(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPInstanceDescriber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPInstanceDescriber{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Describe 实现 service.InstanceDescriber
func (d *HTTPInstanceDescriber) Describe(ctx context.Context, code string) (dto.InstanceDescription, error) {
	var desc dto.InstanceDescription

	endpoint := d.baseURL + "/instances/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return desc, fmt.Errorf("构造实例描述请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return desc, fmt.Errorf("请求实例描述服务失败: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return desc, fmt.Errorf("%w: %s", ErrInstanceUnknown, code)
	case resp.StatusCode != http.StatusOK:
		d.logger.Warn("实例描述服务返回非 200",
			zap.String("code", code),
			zap.Int("status", resp.StatusCode),
		)
		return desc, fmt.Errorf("%w: HTTP %d", ErrInstanceResponse, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDescribeBody)).Decode(&desc); err != nil {
		return desc, fmt.Errorf("%w: %v", ErrInstanceResponse, err)
	}
	return desc, nil
}
