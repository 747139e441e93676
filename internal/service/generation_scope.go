package service

import (
	"context"

	"github.com/Bogdy12/uclapi/internal/dataset"
)

// ── 缓存所属代 ──────────────────────────────────────────────
//
// 周历快照与查询缓存按数据集代分别存放：
//   - 请求已固定代（dataset.WithGeneration）时使用固定的代
//   - 否则在一次解析开始时读取一次标志，整次解析的缓存读写都归入该代
//   - reader 为 nil 时所有缓存归入同一个空代
// 仓储查询本身不受影响，仍按各自的规则选择数据表。
// ─────────────────────────────────────────────────────────────

type cacheGenKey struct{}

type cacheScope struct {
	reader GenerationReader
}

func cacheGenerationFrom(ctx context.Context) (dataset.Generation, bool) {
	if gen, ok := dataset.PinnedFrom(ctx); ok {
		return gen, true
	}
	gen, ok := ctx.Value(cacheGenKey{}).(dataset.Generation)
	return gen, ok
}

// generation 当前调用的缓存代
func (s cacheScope) generation(ctx context.Context) (dataset.Generation, error) {
	if gen, ok := cacheGenerationFrom(ctx); ok {
		return gen, nil
	}
	if s.reader == nil {
		return "", nil
	}
	return s.reader.Current(ctx)
}

// bind 读取一次标志并记入 context，后续缓存操作不再读标志
func (s cacheScope) bind(ctx context.Context) (context.Context, error) {
	if _, ok := cacheGenerationFrom(ctx); ok || s.reader == nil {
		return ctx, nil
	}
	gen, err := s.reader.Current(ctx)
	if err != nil {
		return ctx, err
	}
	return context.WithValue(ctx, cacheGenKey{}, gen), nil
}
