// Command miniobench-report walks a directory of case artifacts produced by
// one suite run (local, s3://, or gs://), aggregates their summary.json
// files into a single JSON manifest, and optionally publishes that manifest
// to S3-compatible or Google Cloud Storage.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"miniobench/internal/config"
	"miniobench/internal/report"
	"miniobench/internal/util"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// CaseEntry is one case's entry in the aggregate manifest.
type CaseEntry struct {
	ID             string         `json:"id"`
	Dir            string         `json:"dir"`
	CaseName       string         `json:"case_name"`
	Passed         bool           `json:"passed"`
	Timestamp      string         `json:"timestamp"`
	Message        string         `json:"message"`
	UserException  string         `json:"user_exception,omitempty"`
	TestException  string         `json:"test_exception,omitempty"`
	CoreBacktrace  string         `json:"core_backtrace,omitempty"`
	ArchiveName    string         `json:"archive_name,omitempty"`
	ArchiveCodec   string         `json:"archive_codec,omitempty"`
	ArchiveURL     string         `json:"archive_url,omitempty"`
	UploadLocation string         `json:"upload_location,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
}

// Manifest is the aggregate payload written to report.json.
type Manifest struct {
	GeneratedAt string      `json:"generated_at"`
	Source      string      `json:"source"`
	TotalCases  int         `json:"total_cases"`
	FailedCases int         `json:"failed_cases"`
	Cases       []CaseEntry `json:"cases"`
}

type loadOptions struct {
	ArtifactPublicBaseURL string
}

type publishOptions struct {
	S3            config.S3Config
	GCS           config.GCSConfig
	PublicBaseURL string
}

func main() {
	input := flag.String("input", ".report", "input directory, s3://bucket/prefix, or gs://bucket/prefix")
	output := flag.String("output", "report-out", "output directory for report.json")
	configPath := flag.String("config", "config.yaml", "path to config file (for S3/GCS access and publish settings)")
	artifactPublicBaseURL := flag.String("artifact-public-base-url", "", "public HTTP(S) base URL used to derive archive links from gs:// or s3:// upload locations")
	publish := flag.Bool("publish", false, "upload report.json to the configured storage backend after writing it locally")
	generatedAt := flag.String("generated-at", "", "timestamp recorded in the manifest (RFC3339); defaults to empty when omitted")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("failed to load config: %v", err)
	}
	if err := util.InitLogging(cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
	}
	defer util.CloseLogging()

	opts := loadOptions{ArtifactPublicBaseURL: *artifactPublicBaseURL}
	ctx := context.Background()

	var cases []CaseEntry
	switch {
	case strings.HasPrefix(strings.ToLower(*input), "s3://"):
		bucket, prefix, err := parseS3URI(*input)
		if err != nil {
			fail("invalid s3 input: %v", err)
		}
		cases, err = loadS3Cases(ctx, cfg.Storage.S3, bucket, prefix, opts)
		if err != nil {
			fail("failed to load s3 cases: %v", err)
		}
	case strings.HasPrefix(strings.ToLower(*input), "gs://"):
		bucket, prefix, err := parseGCSURI(*input)
		if err != nil {
			fail("invalid gcs input: %v", err)
		}
		cases, err = loadGCSCases(ctx, cfg.Storage.GCS, bucket, prefix, opts)
		if err != nil {
			fail("failed to load gcs cases: %v", err)
		}
	default:
		cases, err = loadLocalCases(*input, opts)
		if err != nil {
			fail("failed to load local cases: %v", err)
		}
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].ID < cases[j].ID })

	failed := 0
	for _, c := range cases {
		if !c.Passed {
			failed++
		}
	}
	manifest := Manifest{
		GeneratedAt: *generatedAt,
		Source:      *input,
		TotalCases:  len(cases),
		FailedCases: failed,
		Cases:       cases,
	}
	if err := writeManifest(*output, manifest); err != nil {
		fail("failed to write manifest: %v", err)
	}
	util.Infof("wrote manifest for %d case(s), %d failed, to %s", len(cases), failed, *output)

	if *publish {
		location, err := publishManifest(ctx, publishOptions{
			S3:            cfg.Storage.S3,
			GCS:           cfg.Storage.GCS,
			PublicBaseURL: *artifactPublicBaseURL,
		}, *output)
		if err != nil {
			fail("failed to publish manifest: %v", err)
		}
		if location != "" {
			util.Infof("published manifest to %s", location)
		}
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func loadLocalCases(root string, opts loadOptions) ([]CaseEntry, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	cases := make([]CaseEntry, 0, len(dirs))
	for _, dirEntry := range dirs {
		if !dirEntry.IsDir() {
			continue
		}
		dir := filepath.Join(root, dirEntry.Name())
		summaryPath := filepath.Join(dir, "summary.json")
		data, err := os.ReadFile(summaryPath)
		if err != nil {
			continue
		}
		entry, err := entryFromSummaryBytes(data, dirEntry.Name(), opts)
		if err != nil {
			continue
		}
		entry.Dir = dir
		cases = append(cases, entry)
	}
	return cases, nil
}

func entryFromSummaryBytes(data []byte, fallbackID string, opts loadOptions) (CaseEntry, error) {
	var summary report.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return CaseEntry{}, err
	}
	archiveURL := deriveArchiveURL(summary.UploadLocation, summary.ArchiveName, opts.ArtifactPublicBaseURL)
	return CaseEntry{
		ID:             fallbackID,
		CaseName:       summary.CaseName,
		Passed:         summary.Passed,
		Timestamp:      summary.Timestamp,
		Message:        summary.Message,
		UserException:  summary.UserException,
		TestException:  summary.TestException,
		CoreBacktrace:  summary.CoreBacktrace,
		ArchiveName:    summary.ArchiveName,
		ArchiveCodec:   summary.ArchiveCodec,
		ArchiveURL:     archiveURL,
		UploadLocation: summary.UploadLocation,
		Details:        summary.Details,
	}, nil
}

func writeManifest(output string, manifest Manifest) error {
	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}
	if err := writeJSONFile(filepath.Join(output, "report.json"), manifest); err != nil {
		return err
	}
	return writeCaseSummaryFiles(output, manifest.Cases)
}

func writeJSONFile(path string, payload any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer util.CloseWithErr(f, "report output")
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}

func writeCaseSummaryFiles(output string, cases []CaseEntry) error {
	dir := filepath.Join(output, "cases")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, c := range cases {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			continue
		}
		if err := writeJSONFile(filepath.Join(dir, id+".json"), c); err != nil {
			return err
		}
	}
	return nil
}

func deriveArchiveURL(uploadLocation, archiveName, publicBaseURL string) string {
	if strings.TrimSpace(archiveName) == "" || strings.TrimSpace(uploadLocation) == "" {
		return ""
	}
	if strings.TrimSpace(publicBaseURL) == "" {
		return uploadLocation + archiveName
	}
	if idx := strings.Index(uploadLocation, "://"); idx >= 0 {
		return objectURL(publicBaseURL, uploadLocation[idx+len("://"):]+archiveName)
	}
	return uploadLocation + archiveName
}

func objectURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func parseS3URI(input string) (bucket string, prefix string, err error) {
	return parseBucketURI(input, "s3://")
}

func parseGCSURI(input string) (bucket string, prefix string, err error) {
	return parseBucketURI(input, "gs://")
}

func parseBucketURI(input, scheme string) (bucket string, prefix string, err error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(strings.ToLower(trimmed), scheme) {
		return "", "", fmt.Errorf("missing %s scheme", scheme)
	}
	trimmed = trimmed[len(scheme):]
	if trimmed == "" {
		return "", "", fmt.Errorf("missing bucket name")
	}
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		prefix = strings.TrimSuffix(parts[1], "/")
		if prefix != "" {
			prefix += "/"
		}
	}
	return bucket, prefix, nil
}

func loadS3Cases(ctx context.Context, cfg config.S3Config, bucket, prefix string, opts loadOptions) ([]CaseEntry, error) {
	client, err := s3ClientFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var cases []CaseEntry
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, "/summary.json") {
				continue
			}
			data, err := readS3Object(ctx, client, bucket, key)
			if err != nil {
				continue
			}
			id := deriveCaseID(key, "/summary.json")
			entry, err := entryFromSummaryBytes(data, id, opts)
			if err != nil {
				continue
			}
			entry.Dir = fmt.Sprintf("s3://%s/%s", bucket, strings.TrimSuffix(key, "/summary.json"))
			cases = append(cases, entry)
		}
	}
	return cases, nil
}

func readS3Object(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, err
	}
	defer util.CloseWithErr(out.Body, "s3 object body")
	return io.ReadAll(out.Body)
}

func deriveCaseID(key, suffix string) string {
	trimmed := strings.TrimSuffix(key, suffix)
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func s3ClientFromConfig(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, _ string, _ ...any) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				//nolint:staticcheck // AWS SDK v2 global endpoint resolver is deprecated, but required for custom S3 endpoints.
				return aws.Endpoint{URL: cfg.Endpoint, HostnameImmutable: true}, nil
			}
			//nolint:staticcheck // AWS SDK v2 global endpoint resolver is deprecated, but required for custom S3 endpoints.
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		//nolint:staticcheck // AWS SDK v2 global endpoint resolver is deprecated, but required for custom S3 endpoints.
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) { o.UsePathStyle = cfg.UsePathStyle }), nil
}

func loadGCSCases(ctx context.Context, cfg config.GCSConfig, bucket, prefix string, opts loadOptions) ([]CaseEntry, error) {
	client, err := gcsClientFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			util.Warnf("gcs client close failed: %v", closeErr)
		}
	}()
	var cases []CaseEntry
	it := client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(attrs.Name, "/summary.json") {
			continue
		}
		data, err := readGCSObject(ctx, client, bucket, attrs.Name)
		if err != nil {
			continue
		}
		id := deriveCaseID(attrs.Name, "/summary.json")
		entry, err := entryFromSummaryBytes(data, id, opts)
		if err != nil {
			continue
		}
		entry.Dir = fmt.Sprintf("gs://%s/%s", bucket, strings.TrimSuffix(attrs.Name, "/summary.json"))
		cases = append(cases, entry)
	}
	return cases, nil
}

func readGCSObject(ctx context.Context, client *storage.Client, bucket, key string) ([]byte, error) {
	reader, err := client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer util.CloseWithErr(reader, "gcs object reader")
	return io.ReadAll(reader)
}

func gcsClientFromConfig(ctx context.Context, cfg config.GCSConfig) (*storage.Client, error) {
	opts := []option.ClientOption{}
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(strings.TrimSpace(cfg.CredentialsFile)))
	}
	return storage.NewClient(ctx, opts...)
}

func publishManifest(ctx context.Context, opts publishOptions, output string) (string, error) {
	gcsEnabled := opts.GCS.Enabled && strings.TrimSpace(opts.GCS.Bucket) != ""
	s3Enabled := opts.S3.Enabled && strings.TrimSpace(opts.S3.Bucket) != ""
	if !gcsEnabled && !s3Enabled {
		return "", nil
	}
	files := []string{"report.json"}
	if gcsEnabled {
		if s3Enabled {
			util.Warnf("publish targets include both gcs and s3; using gcs")
		}
		client, err := gcsClientFromConfig(ctx, opts.GCS)
		if err != nil {
			return "", err
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				util.Warnf("gcs client close failed: %v", closeErr)
			}
		}()
		for _, name := range files {
			data, err := os.ReadFile(filepath.Join(output, name))
			if err != nil {
				return "", err
			}
			key := objectKey(opts.GCS.Prefix, name)
			writer := client.Bucket(opts.GCS.Bucket).Object(key).NewWriter(ctx)
			writer.ContentType = "application/json"
			if _, err := writer.Write(data); err != nil {
				_ = writer.Close()
				return "", err
			}
			if err := writer.Close(); err != nil {
				return "", err
			}
		}
		reportKey := objectKey(opts.GCS.Prefix, "report.json")
		if strings.TrimSpace(opts.PublicBaseURL) != "" {
			return objectURL(opts.PublicBaseURL, reportKey), nil
		}
		return fmt.Sprintf("gs://%s/%s", opts.GCS.Bucket, reportKey), nil
	}

	client, err := s3ClientFromConfig(ctx, opts.S3)
	if err != nil {
		return "", err
	}
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(output, name))
		if err != nil {
			return "", err
		}
		key := objectKey(opts.S3.Prefix, name)
		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(opts.S3.Bucket),
			Key:           aws.String(key),
			Body:          strings.NewReader(string(data)),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String("application/json"),
		})
		if err != nil {
			return "", err
		}
	}
	reportKey := objectKey(opts.S3.Prefix, "report.json")
	if strings.TrimSpace(opts.PublicBaseURL) != "" {
		return objectURL(opts.PublicBaseURL, reportKey), nil
	}
	return fmt.Sprintf("s3://%s/%s", opts.S3.Bucket, reportKey), nil
}

func objectKey(prefix, name string) string {
	trimmedPrefix := strings.Trim(prefix, "/")
	trimmedName := strings.TrimLeft(strings.TrimSpace(name), "/")
	if trimmedPrefix == "" {
		return trimmedName
	}
	return trimmedPrefix + "/" + trimmedName
}
