package config

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterGetter is the part of the SSM client used to read secrets
type ParameterGetter interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// NewSSMClient builds an SSM client from the default AWS credential chain
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// ApplySSM exports every parameter under prefix as an environment variable
// named after the last path element. Variables already set win.
func ApplySSM(ctx context.Context, client ParameterGetter, prefix string) (int, error) {
	applied := 0
	var next *string
	for {
		out, err := client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      next,
		})
		if err != nil {
			return applied, fmt.Errorf("get parameters %s: %w", prefix, err)
		}
		for _, p := range out.Parameters {
			key := path.Base(aws.ToString(p.Name))
			if _, set := os.LookupEnv(key); set {
				continue
			}
			if err := os.Setenv(key, aws.ToString(p.Value)); err != nil {
				return applied, fmt.Errorf("set %s: %w", key, err)
			}
			applied++
		}
		if out.NextToken == nil {
			break
		}
		next = out.NextToken
	}
	log.Info().Str("path", prefix).Int("applied", applied).Msg("loaded parameters from SSM")
	return applied, nil
}
