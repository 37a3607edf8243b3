package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/request"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/response"
	"github.com/manarouei/agent-skills-sub004/internal/contract"
	"github.com/manarouei/agent-skills-sub004/internal/gen"
	"github.com/manarouei/agent-skills-sub004/pkg"
)

const resultKeyPrefix = "codeconvert:result:"

var ErrInvalidDescriptor = errors.New("invalid node descriptor")

type ConvertService struct {
	overrides *gen.Overrides
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

func NewConvertService(overrides *gen.Overrides) *ConvertService {
	return &ConvertService{
		overrides: overrides,
		cacheTTL:  skills.GetConfig().RedisConfig.CacheTTL,
		logger:    skills.Logger,
	}
}

// Convert routes one node. Results are cached in Redis, when configured,
// under a hash of the class, the descriptor and the override version.
func (slf *ConvertService) Convert(ctx context.Context, dto request.ConvertDTO) (*gen.Result, bool, error) {
	desc, err := contract.DescriptorFromDocument("node", dto.Node)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	tag := dto.SemanticClass
	if tag == "" {
		tag = desc.SemanticClass
	}
	class := gen.ParseSemanticClass(tag)

	key, err := slf.cacheKey(class, desc)
	if err != nil {
		return nil, false, err
	}
	if pkg.RedisEnabled() {
		var cached gen.Result
		err := pkg.RedisGet(ctx, key, &cached)
		switch {
		case err == nil:
			slf.logger.Debug().Str("node", desc.NodeName).Msg("conversion cache hit")
			return &cached, true, nil
		case !pkg.IsRedisNil(err):
			slf.logger.Warn().Err(err).Msg("conversion cache read failed")
		}
	}

	res := gen.RouteWithOverrides(slf.overrides, class, desc.Context())
	slf.logger.Info().
		Str("node", desc.NodeName).
		Str("class", res.Class.String()).
		Str("specialization", res.Specialization()).
		Int("notes", len(res.ConversionNotes)).
		Msg("node converted")

	if pkg.RedisEnabled() {
		if err := pkg.RedisSet(ctx, key, res, slf.cacheTTL); err != nil {
			slf.logger.Warn().Err(err).Msg("conversion cache write failed")
		}
	}
	return res, false, nil
}

// Adapter converts the node and assembles the complete Go file
func (slf *ConvertService) Adapter(ctx context.Context, dto request.ConvertDTO) (string, []byte, error) {
	res, _, err := slf.Convert(ctx, dto)
	if err != nil {
		return "", nil, err
	}
	src, err := gen.AdapterFile(dto.Package, res)
	if err != nil {
		return "", nil, err
	}
	return gen.AdapterFileName(res), src, nil
}

func (slf *ConvertService) Classes() []response.ClassResponseDTO {
	classes := gen.Classes()
	out := make([]response.ClassResponseDTO, 0, len(classes))
	for _, c := range classes {
		out = append(out, response.ClassResponseDTO{Name: c.String(), Specializations: gen.Specializations(c)})
	}
	return out
}

func (slf *ConvertService) cacheKey(class gen.SemanticClass, desc *contract.Descriptor) (string, error) {
	version := 0
	if slf.overrides != nil {
		version = slf.overrides.Version
	}
	data, err := json.Marshal(struct {
		Class     string               `json:"class"`
		Overrides int                  `json:"overrides"`
		Node      *contract.Descriptor `json:"node"`
	}{class.String(), version, desc})
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return resultKeyPrefix + hex.EncodeToString(sum[:]), nil
}
