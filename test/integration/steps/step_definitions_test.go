package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/menuinzicht/backend/config"
	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
	"github.com/menuinzicht/backend/internal/infra/dependency"
	"github.com/menuinzicht/backend/internal/integration/cache"
	"github.com/menuinzicht/backend/internal/integration/email"
	"github.com/menuinzicht/backend/internal/integration/persistence"
	"github.com/menuinzicht/backend/internal/integration/persistence/model"
	"github.com/menuinzicht/backend/test/integration/mock"
)

const feedbackRecipient = "owner@menuinzicht.test"

var tags string

func init() {
	flag.StringVar(&tags, "scenarios", "", "tags to run")
}

func TestFeatures(t *testing.T) {
	flag.Parse()

	suite := godog.TestSuite{
		ScenarioInitializer: func(s *godog.ScenarioContext) {
			InitializeScenario(s)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			Tags:     tags,
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

type testContext struct {
	uri      string
	headers  map[string]string
	client   *http.Client
	response *response
	db       *mock.Db
	redis    *mock.Redis
}

type response struct {
	status  int
	headers http.Header
	body    any
}

var serverInit sync.Once
var testDB *mock.Db
var testInjector *dependency.Injector
var testSender *email.MockEmailSender
var testServerPort int
var portInit sync.Once

func initializePort() {
	portInit.Do(func() {
		testServerPort = findAvailablePort()
		_ = os.Setenv("SERVER_PORT", strconv.Itoa(testServerPort))
		_ = os.Setenv("ENV", "test")
		_ = os.Setenv("FEEDBACK_TO_EMAIL", feedbackRecipient)
	})
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	initializePort()

	test := &testContext{
		uri:    fmt.Sprintf("http://localhost:%d", testServerPort),
		client: &http.Client{Timeout: 10 * time.Second},
		db: mock.NewDb(map[string]any{
			"daily_metrics":    &model.DailyMetricModel{},
			"interval_metrics": &model.IntervalMetricModel{},
			"interval_items":   &model.IntervalItemModel{},
			"menu_items":       &model.MenuItemModel{},
			"email_outbox":     &model.OutboundEmailModel{},
		}),
		redis: mock.NewRedis(),
	}

	testDB = test.db

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)

	// Data setup steps
	ctx.Given(`^the menu catalog is seeded$`, test.theMenuCatalogIsSeeded)
	ctx.Given(`^the following daily metrics exist:$`, test.theFollowingDailyMetricsExist)
	ctx.Given(`^the following intervals exist on "([^"]*)":$`, test.theFollowingIntervalsExistOn)

	// Header steps
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)
	ctx.When(`^the email worker processes the outbox$`, test.theEmailWorkerProcessesTheOutbox)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response should be JSON$`, test.theResponseShouldBeJSON)
	ctx.Then(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)
	ctx.Then(`^the response field "([^"]*)" should be null$`, test.theResponseFieldShouldBeNull)
	ctx.Then(`^the response field "([^"]*)" should have (\d+) items$`, test.theResponseFieldShouldHaveItems)
	ctx.Then(`^the response header "([^"]*)" should be "([^"]*)"$`, test.theResponseHeaderShouldBe)
	ctx.Then(`^the response header "([^"]*)" should contain "([^"]*)"$`, test.theResponseHeaderShouldContain)

	// Database assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)

	// Cache and email assertion steps
	ctx.Then(`^the interval cache should contain the date "([^"]*)"$`, test.theIntervalCacheShouldContainTheDate)
	ctx.Then(`^the interval cache should not contain the date "([^"]*)"$`, test.theIntervalCacheShouldNotContainTheDate)
	ctx.Then(`^(\d+) emails? should have been sent to "([^"]*)"$`, test.emailsShouldHaveBeenSentTo)
	ctx.Then(`^the last email should reply to "([^"]*)"$`, test.theLastEmailShouldReplyTo)
}

func findAvailablePort() int {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		panic(err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

func (t *testContext) before() error {
	t.headers = make(map[string]string)
	t.response = nil

	if testSender != nil {
		testSender.SentEmails = nil
	}
	if err := t.redis.Clear(); err != nil {
		return err
	}
	return t.db.ClearDB()
}

func (t *testContext) startServer() error {
	var initErr error
	serverInit.Do(func() {
		gin.SetMode(gin.TestMode)

		testSender = email.NewMockEmailSender()
		injector, err := dependency.NewInjector(config.Load(), testDB.DbConn, dependency.Options{
			Redis:       t.redis.Client,
			EmailSender: testSender,
		})
		if err != nil {
			initErr = err
			return
		}
		testInjector = injector

		engine := injector.Router.Setup("test")
		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", testServerPort),
			Handler: engine,
		}

		go func() {
			_ = server.ListenAndServe()
		}()
	})
	if initErr != nil {
		return initErr
	}
	if testInjector == nil {
		return errors.New("test server failed to initialize")
	}

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(t.uri + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return errors.New("test server did not become ready")
}

func (t *testContext) theAPIServerIsRunning() error {
	return t.startServer()
}

func (t *testContext) theMenuCatalogIsSeeded() error {
	return testInjector.CatalogRepo.Seed(context.Background(), persistence.DefaultCatalog())
}

// theFollowingDailyMetricsExist reads a table with the columns
// date | revenue | orders | avg_items.
func (t *testContext) theFollowingDailyMetricsExist(table *godog.Table) error {
	rows, err := tableRows(table)
	if err != nil {
		return err
	}

	metrics := make([]entity.DailyMetric, 0, len(rows))
	for _, row := range rows {
		date, err := calendar.ParseLocalDate(row["date"])
		if err != nil {
			return err
		}
		revenue, err := decimal.NewFromString(row["revenue"])
		if err != nil {
			return err
		}
		orders, err := strconv.Atoi(row["orders"])
		if err != nil {
			return err
		}
		avgItems, err := strconv.ParseFloat(row["avg_items"], 64)
		if err != nil {
			return err
		}

		aov := decimal.Zero
		if orders > 0 {
			aov = revenue.Div(decimal.NewFromInt(int64(orders))).Round(2)
		}
		metrics = append(metrics, entity.DailyMetric{
			Date:             date,
			Revenue:          revenue,
			OrderCount:       orders,
			AvgItemsPerOrder: avgItems,
			AvgOrderValue:    aov,
		})
	}

	return testInjector.DailyMetricRepo.Upsert(context.Background(), metrics)
}

// theFollowingIntervalsExistOn reads a table with the columns
// time | orders | revenue | item | category | price | qty.
// Rows sharing a time add items to the same interval; orders and revenue
// are taken from the first row of the interval.
func (t *testContext) theFollowingIntervalsExistOn(isoDate string, table *godog.Table) error {
	date, err := calendar.ParseLocalDate(isoDate)
	if err != nil {
		return err
	}
	rows, err := tableRows(table)
	if err != nil {
		return err
	}

	var records []entity.IntervalRecord
	index := make(map[string]int)
	for _, row := range rows {
		i, exists := index[row["time"]]
		if !exists {
			orders, err := strconv.Atoi(row["orders"])
			if err != nil {
				return err
			}
			revenue, err := decimal.NewFromString(row["revenue"])
			if err != nil {
				return err
			}
			records = append(records, entity.IntervalRecord{
				Date:    date,
				Slot:    row["time"],
				Orders:  orders,
				Revenue: revenue,
			})
			i = len(records) - 1
			index[row["time"]] = i
		}

		if row["item"] == "" {
			continue
		}
		price, err := decimal.NewFromString(row["price"])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(row["qty"])
		if err != nil {
			return err
		}
		records[i].Items = append(records[i].Items, entity.ItemSale{
			Name:     row["item"],
			Category: entity.MenuCategory(row["category"]),
			Price:    price,
			Quantity: qty,
		})
	}

	return testInjector.IntervalRepo.ReplaceDay(context.Background(), date, records)
}

func tableRows(table *godog.Table) ([]map[string]string, error) {
	if table == nil || len(table.Rows) < 1 {
		return nil, errors.New("table has no header row")
	}

	header := table.Rows[0].Cells
	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, r := range table.Rows[1:] {
		row := make(map[string]string, len(header))
		for i, cell := range r.Cells {
			row[header[i].Value] = strings.TrimSpace(cell.Value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = value
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, path, nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(body.Content)
	}
	return t.executeRequest(method, path, payload)
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var req *http.Request
	var err error

	url := t.uri + path

	if payload != nil {
		req, err = http.NewRequest(method, url, bytes.NewReader(payload))
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{
		status:  resp.StatusCode,
		headers: resp.Header,
	}

	var responseBody map[string]any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		t.response.body = string(bodyBytes)
	} else {
		t.response.body = responseBody
	}

	return nil
}

func (t *testContext) theEmailWorkerProcessesTheOutbox() error {
	if testInjector.EmailWorker == nil {
		return errors.New("email worker is not configured")
	}
	testInjector.EmailWorker.ProcessNow(context.Background())
	return nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expectedStatus, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if _, ok := t.response.body.(map[string]any); !ok {
		return fmt.Errorf("response is not JSON: %v", t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldContain(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	if _, exists := body[field]; !exists {
		return fmt.Errorf("response does not contain field '%s': %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	value := getFieldValue(body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}

	actualValue := fmt.Sprintf("%v", value)
	if actualValue != expectedValue {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	value := getFieldValue(body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBeNull(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	if value := getFieldValue(body, field); value != nil {
		return fmt.Errorf("field '%s' expected null, got '%v'", field, value)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldHaveItems(field string, count int) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	items, ok := getFieldValue(body, field).([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list: %v", field, body)
	}
	if len(items) != count {
		return fmt.Errorf("field '%s' expected %d items, got %d", field, count, len(items))
	}
	return nil
}

func (t *testContext) theResponseHeaderShouldBe(header, expected string) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if actual := t.response.headers.Get(header); actual != expected {
		return fmt.Errorf("header '%s' expected '%s', got '%s'", header, expected, actual)
	}
	return nil
}

func (t *testContext) theResponseHeaderShouldContain(header, expected string) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if actual := t.response.headers.Get(header); !strings.Contains(actual, expected) {
		return fmt.Errorf("header '%s' expected to contain '%s', got '%s'", header, expected, actual)
	}
	return nil
}

func (t *testContext) jsonBody() (map[string]any, error) {
	if t.response == nil {
		return nil, errors.New("no response received")
	}
	body, ok := t.response.body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}
	return body, nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	if entity, ok := t.db.GetModel(table); ok {
		entityType := reflect.TypeOf(entity).Elem()
		entitySlice := reflect.MakeSlice(reflect.SliceOf(entityType), 0, 0)
		entitySlicePtr := reflect.New(entitySlice.Type())
		entitySlicePtr.Elem().Set(entitySlice)

		result := t.db.DbConn.Unscoped().Find(entitySlicePtr.Interface())
		if result.Error != nil {
			return result.Error
		}

		count := entitySlicePtr.Elem().Len()
		if count != quantity {
			return fmt.Errorf("expected %d objects in '%s', got %d", quantity, table, count)
		}
		return nil
	}
	return fmt.Errorf("table '%s' not found in models", table)
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(content.Content), &criteria); err != nil {
		return err
	}

	if entity, ok := t.db.GetModel(table); ok {
		entityType := reflect.TypeOf(entity).Elem()
		entitySlice := reflect.MakeSlice(reflect.SliceOf(entityType), 0, 0)
		entitySlicePtr := reflect.New(entitySlice.Type())
		entitySlicePtr.Elem().Set(entitySlice)

		query := t.db.DbConn.Unscoped()
		for key, value := range criteria {
			query = query.Where(fmt.Sprintf("%s = ?", key), value)
		}

		result := query.Find(entitySlicePtr.Interface())
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		count := entitySlicePtr.Elem().Len()
		if count != quantity {
			return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
		}
		return nil
	}
	return fmt.Errorf("table '%s' not found in models", table)
}

func (t *testContext) theIntervalCacheShouldContainTheDate(date string) error {
	if !t.redis.Server.Exists(cache.DefaultKeyPrefix + date) {
		return fmt.Errorf("expected cached intervals for %s, keys: %v", date, t.redis.Keys())
	}
	return nil
}

func (t *testContext) theIntervalCacheShouldNotContainTheDate(date string) error {
	if t.redis.Server.Exists(cache.DefaultKeyPrefix + date) {
		return fmt.Errorf("expected no cached intervals for %s", date)
	}
	return nil
}

func (t *testContext) emailsShouldHaveBeenSentTo(count int, recipient string) error {
	sent := 0
	for _, e := range testSender.SentEmails {
		if e.To == recipient {
			sent++
		}
	}
	if sent != count {
		return fmt.Errorf("expected %d emails to %s, got %d", count, recipient, sent)
	}
	return nil
}

func (t *testContext) theLastEmailShouldReplyTo(replyTo string) error {
	if len(testSender.SentEmails) == 0 {
		return errors.New("no email was sent")
	}
	last := testSender.SentEmails[len(testSender.SentEmails)-1]
	if last.ReplyTo != replyTo {
		return fmt.Errorf("expected reply-to %s, got %s", replyTo, last.ReplyTo)
	}
	return nil
}

func getFieldValue(object any, dotSeparatedField string) any {
	if object == nil {
		return nil
	}

	var objectMap map[string]any
	switch v := object.(type) {
	case map[string]any:
		objectMap = v
	default:
		objectJSON, _ := json.Marshal(object)
		if err := json.Unmarshal(objectJSON, &objectMap); err != nil {
			return nil
		}
	}

	fields := strings.Split(dotSeparatedField, ".")
	var field any = objectMap

	for _, currentField := range fields {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			if arr, ok := field.([]any); ok && i < len(arr) {
				field = arr[i]
			} else {
				return nil
			}
		} else {
			if m, ok := field.(map[string]any); ok {
				field = m[currentField]
			} else {
				return nil
			}
		}
	}

	return field
}
