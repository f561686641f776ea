package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ENV_PREFIX = "FEMTO_GATEWAY"

	URL_APP_NAME                   = "URL_App_Name"
	URL_PATH_PREFIX                = "URL_Path_Prefix"
	URL_BASE_PATH                  = "URL_Base_Path"
	HTTP_SHUTDOWN_TIMEOUT          = "HTTP_Shutdown_Timeout"
	SERVICE_TO_SERVICE_CREDENTIALS = "Service_To_Service_Credentials"
	PROFILE                        = "Enable_Profile"
	WEBHOOK_VERIFY_TOKEN           = "Webhook_Verify_Token"
	WEBHOOK_OBJECT_TYPE            = "Webhook_Object_Type"
	BROKERS                        = "Kafka_Brokers"
	KAFKA_BATCH_SIZE               = "Kafka_Batch_Size"
	KAFKA_BATCH_BYTES              = "Kafka_Batch_Bytes"
	KAFKA_BALANCER                 = "Kafka_Balancer"
	KAFKA_USERNAME                 = "Kafka_Username"
	KAFKA_PASSWORD                 = "Kafka_Password"
	KAFKA_SASL_MECHANISM           = "Kafka_SASL_Mechanism"
	KAFKA_CA                       = "Kafka_CA"
	KAFKA_PUBLISH_TIMEOUT          = "Kafka_Publish_Timeout"
	DEFAULT_BROKER_ADDRESS         = "kafka:29092"
	REGISTRY_DATABASE_HOST         = "Registry_Database_Host"
	REGISTRY_DATABASE_PORT         = "Registry_Database_Port"
	REGISTRY_DATABASE_USER         = "Registry_Database_User"
	REGISTRY_DATABASE_PASSWORD     = "Registry_Database_Password"
	REGISTRY_DATABASE_NAME         = "Registry_Database_Name"
	REGISTRY_DATABASE_SSL_MODE     = "Registry_Database_SSL_Mode"
	REGISTRY_DATABASE_SSL_CERT     = "Registry_Database_SSL_Root_Cert"
	REGISTRY_DATABASE_MAX_CONNS    = "Registry_Database_Max_Connections"
	REGISTRY_QUERY_TIMEOUT         = "Registry_Query_Timeout"
	ELIGIBILITY_CACHE_SIZE         = "Eligibility_Cache_Size"
	ELIGIBILITY_CACHE_TTL          = "Eligibility_Cache_TTL"
	ELIGIBILITY_CACHE_TTI          = "Eligibility_Cache_TTI"
)

type Config struct {
	UrlAppName                  string
	UrlPathPrefix               string
	UrlBasePath                 string
	HttpShutdownTimeout         time.Duration
	ServiceToServiceCredentials map[string]interface{}
	Profile                     bool
	WebhookVerifyToken          string
	WebhookObjectType           string
	KafkaBrokers                []string
	KafkaBatchSize              int
	KafkaBatchBytes             int
	KafkaBalancer               string
	KafkaUsername               string
	KafkaPassword               string
	KafkaSASLMechanism          string
	KafkaCA                     string
	KafkaPublishTimeout         time.Duration
	RegistryDatabaseHost        string
	RegistryDatabasePort        int
	RegistryDatabaseUser        string
	RegistryDatabasePassword    string
	RegistryDatabaseName        string
	RegistryDatabaseSslMode     string
	RegistryDatabaseSslRootCert string
	RegistryDatabaseMaxConns    int
	RegistryQueryTimeout        time.Duration
	EligibilityCacheSize        int
	EligibilityCacheTTL         time.Duration
	EligibilityCacheTTI         time.Duration
}

func (c Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", URL_PATH_PREFIX, c.UrlPathPrefix)
	fmt.Fprintf(&b, "%s: %s\n", URL_APP_NAME, c.UrlAppName)
	fmt.Fprintf(&b, "%s: %s\n", URL_BASE_PATH, c.UrlBasePath)
	fmt.Fprintf(&b, "%s: %s\n", HTTP_SHUTDOWN_TIMEOUT, c.HttpShutdownTimeout)
	fmt.Fprintf(&b, "%s: %t\n", PROFILE, c.Profile)
	fmt.Fprintf(&b, "%s: %s\n", WEBHOOK_OBJECT_TYPE, c.WebhookObjectType)
	fmt.Fprintf(&b, "%s: %s\n", BROKERS, c.KafkaBrokers)
	fmt.Fprintf(&b, "%s: %d\n", KAFKA_BATCH_SIZE, c.KafkaBatchSize)
	fmt.Fprintf(&b, "%s: %d\n", KAFKA_BATCH_BYTES, c.KafkaBatchBytes)
	fmt.Fprintf(&b, "%s: %s\n", KAFKA_BALANCER, c.KafkaBalancer)
	fmt.Fprintf(&b, "%s: %s\n", KAFKA_PUBLISH_TIMEOUT, c.KafkaPublishTimeout)
	fmt.Fprintf(&b, "%s: %s\n", REGISTRY_DATABASE_HOST, c.RegistryDatabaseHost)
	fmt.Fprintf(&b, "%s: %d\n", REGISTRY_DATABASE_PORT, c.RegistryDatabasePort)
	fmt.Fprintf(&b, "%s: %s\n", REGISTRY_DATABASE_NAME, c.RegistryDatabaseName)
	fmt.Fprintf(&b, "%s: %s\n", REGISTRY_DATABASE_SSL_MODE, c.RegistryDatabaseSslMode)
	fmt.Fprintf(&b, "%s: %d\n", REGISTRY_DATABASE_MAX_CONNS, c.RegistryDatabaseMaxConns)
	fmt.Fprintf(&b, "%s: %s\n", REGISTRY_QUERY_TIMEOUT, c.RegistryQueryTimeout)
	fmt.Fprintf(&b, "%s: %d\n", ELIGIBILITY_CACHE_SIZE, c.EligibilityCacheSize)
	fmt.Fprintf(&b, "%s: %s\n", ELIGIBILITY_CACHE_TTL, c.EligibilityCacheTTL)
	fmt.Fprintf(&b, "%s: %s\n", ELIGIBILITY_CACHE_TTI, c.EligibilityCacheTTI)

	return b.String()
}

func GetConfig() *Config {
	options := viper.New()

	options.SetDefault(URL_PATH_PREFIX, "api")
	options.SetDefault(URL_APP_NAME, "femto-gateway")
	options.SetDefault(HTTP_SHUTDOWN_TIMEOUT, 2)
	options.SetDefault(SERVICE_TO_SERVICE_CREDENTIALS, "")
	options.SetDefault(PROFILE, false)
	options.SetDefault(WEBHOOK_VERIFY_TOKEN, "")
	options.SetDefault(WEBHOOK_OBJECT_TYPE, "page")
	options.SetDefault(BROKERS, []string{DEFAULT_BROKER_ADDRESS})
	options.SetDefault(KAFKA_BATCH_SIZE, 100)
	options.SetDefault(KAFKA_BATCH_BYTES, 1048576)
	options.SetDefault(KAFKA_BALANCER, "hash")
	options.SetDefault(KAFKA_PUBLISH_TIMEOUT, 10)
	options.SetDefault(REGISTRY_DATABASE_HOST, "localhost")
	options.SetDefault(REGISTRY_DATABASE_PORT, 5432)
	options.SetDefault(REGISTRY_DATABASE_USER, "femto")
	options.SetDefault(REGISTRY_DATABASE_PASSWORD, "femto")
	options.SetDefault(REGISTRY_DATABASE_NAME, "femto-gateway")
	options.SetDefault(REGISTRY_DATABASE_SSL_MODE, "disable")
	options.SetDefault(REGISTRY_DATABASE_SSL_CERT, "db_ssl_root_cert.pem")
	options.SetDefault(REGISTRY_DATABASE_MAX_CONNS, 20)
	options.SetDefault(REGISTRY_QUERY_TIMEOUT, 5)
	options.SetDefault(ELIGIBILITY_CACHE_SIZE, 10000)
	options.SetDefault(ELIGIBILITY_CACHE_TTL, 30*time.Minute)
	options.SetDefault(ELIGIBILITY_CACHE_TTI, 5*time.Minute)

	options.SetEnvPrefix(ENV_PREFIX)
	options.AutomaticEnv()

	return &Config{
		UrlPathPrefix:               options.GetString(URL_PATH_PREFIX),
		UrlAppName:                  options.GetString(URL_APP_NAME),
		UrlBasePath:                 buildUrlBasePath(options.GetString(URL_PATH_PREFIX), options.GetString(URL_APP_NAME)),
		HttpShutdownTimeout:         options.GetDuration(HTTP_SHUTDOWN_TIMEOUT) * time.Second,
		ServiceToServiceCredentials: options.GetStringMap(SERVICE_TO_SERVICE_CREDENTIALS),
		Profile:                     options.GetBool(PROFILE),
		WebhookVerifyToken:          options.GetString(WEBHOOK_VERIFY_TOKEN),
		WebhookObjectType:           options.GetString(WEBHOOK_OBJECT_TYPE),
		KafkaBrokers:                options.GetStringSlice(BROKERS),
		KafkaBatchSize:              options.GetInt(KAFKA_BATCH_SIZE),
		KafkaBatchBytes:             options.GetInt(KAFKA_BATCH_BYTES),
		KafkaBalancer:               options.GetString(KAFKA_BALANCER),
		KafkaUsername:               options.GetString(KAFKA_USERNAME),
		KafkaPassword:               options.GetString(KAFKA_PASSWORD),
		KafkaSASLMechanism:          options.GetString(KAFKA_SASL_MECHANISM),
		KafkaCA:                     options.GetString(KAFKA_CA),
		KafkaPublishTimeout:         options.GetDuration(KAFKA_PUBLISH_TIMEOUT) * time.Second,
		RegistryDatabaseHost:        options.GetString(REGISTRY_DATABASE_HOST),
		RegistryDatabasePort:        options.GetInt(REGISTRY_DATABASE_PORT),
		RegistryDatabaseUser:        options.GetString(REGISTRY_DATABASE_USER),
		RegistryDatabasePassword:    options.GetString(REGISTRY_DATABASE_PASSWORD),
		RegistryDatabaseName:        options.GetString(REGISTRY_DATABASE_NAME),
		RegistryDatabaseSslMode:     options.GetString(REGISTRY_DATABASE_SSL_MODE),
		RegistryDatabaseSslRootCert: options.GetString(REGISTRY_DATABASE_SSL_CERT),
		RegistryDatabaseMaxConns:    options.GetInt(REGISTRY_DATABASE_MAX_CONNS),
		RegistryQueryTimeout:        options.GetDuration(REGISTRY_QUERY_TIMEOUT) * time.Second,
		EligibilityCacheSize:        options.GetInt(ELIGIBILITY_CACHE_SIZE),
		EligibilityCacheTTL:         options.GetDuration(ELIGIBILITY_CACHE_TTL),
		EligibilityCacheTTI:         options.GetDuration(ELIGIBILITY_CACHE_TTI),
	}
}

func buildUrlBasePath(pathPrefix string, appName string) string {
	return fmt.Sprintf("/%s/%s/v1", pathPrefix, appName)
}
