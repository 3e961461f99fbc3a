package config

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks that the configuration can start the server. Credentials
// needed at startup fail fast here; image credentials are reported per
// request by the upload endpoint.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.Database),
		validation.Field(&c.AI),
		validation.Field(&c.Images),
		validation.Field(&c.RateLimit),
	)
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required),
	)
}

func (d DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Driver, validation.Required, validation.In(DriverMongo, DriverPostgres, DriverSQLite)),
		validation.Field(&d.URI, validation.When(d.Driver != DriverSQLite,
			validation.Required.Error("is required for the mongo and postgres drivers (set MONGODB_URI or DATABASE_URL)"))),
		validation.Field(&d.Name, validation.When(d.Driver == DriverMongo, validation.Required)),
		validation.Field(&d.SQLitePath, validation.When(d.Driver == DriverSQLite, validation.Required)),
	)
}

func (a AIConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.APIKey, validation.When(a.Enabled,
			validation.Required.Error("is required when AI features are enabled (set OPENAI_API_KEY)"))),
		validation.Field(&a.Model, validation.Required),
	)
}

func (i ImagesConfig) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Provider, validation.Required, validation.In(ImagesCloudflare, ImagesS3)),
		validation.Field(&i.S3, validation.By(func(interface{}) error {
			if i.Provider == ImagesS3 && i.S3.Bucket == "" {
				return errors.New("bucket is required for the s3 provider (set S3_BUCKET_NAME)")
			}
			return nil
		})),
	)
}

func (s S3Config) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Region, validation.Required),
	)
}

func (r RateLimitConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Requests, validation.Required, validation.Min(1)),
		validation.Field(&r.Window, validation.Required),
	)
}
