package external

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoCoordinates 站点与房间均未登记坐标
var ErrNoCoordinates = errors.New("未登记坐标")

type point struct {
	Lat string `yaml:"lat"`
	Lng string `yaml:"lng"`
}

type siteCoordinates struct {
	Lat   string           `yaml:"lat"`
	Lng   string           `yaml:"lng"`
	Rooms map[string]point `yaml:"rooms"`
}

type coordinatesFile struct {
	Sites map[string]siteCoordinates `yaml:"sites"`
}

// FileCoordinates 从 YAML 文件加载的站点/房间坐标表
// 房间级坐标优先，其次站点级
type FileCoordinates struct {
	sites map[string]siteCoordinates
}

// LoadFileCoordinates 读取坐标文件
func LoadFileCoordinates(path string) (*FileCoordinates, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取坐标文件失败: %w", err)
	}
	return ParseCoordinates(raw)
}

// ParseCoordinates 解析坐标 YAML
func ParseCoordinates(raw []byte) (*FileCoordinates, error) {
	var f coordinatesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("解析坐标文件失败: %w", err)
	}
	if f.Sites == nil {
		f.Sites = make(map[string]siteCoordinates)
	}
	return &FileCoordinates{sites: f.Sites}, nil
}

// Coordinates 实现 service.CoordinateLookup
func (c *FileCoordinates) Coordinates(_ context.Context, siteID, roomID string) (string, string, error) {
	site, ok := c.sites[siteID]
	if !ok {
		return "", "", fmt.Errorf("%w: site=%s", ErrNoCoordinates, siteID)
	}
	if room, ok := site.Rooms[roomID]; ok && room.Lat != "" {
		return room.Lat, room.Lng, nil
	}
	if site.Lat == "" {
		return "", "", fmt.Errorf("%w: site=%s room=%s", ErrNoCoordinates, siteID, roomID)
	}
	return site.Lat, site.Lng, nil
}

// Len 已登记站点数
func (c *FileCoordinates) Len() int {
	return len(c.sites)
}
