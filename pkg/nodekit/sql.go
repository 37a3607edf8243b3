package nodekit

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// QueryTimeout bounds every SQL statement run by generated adapters
const QueryTimeout = 30 * time.Second

// Dialect identifies a SQL driver and its placeholder style
type Dialect string

const (
	DialectPostgres     Dialect = "postgres"     // pgx
	DialectPostgresWire Dialect = "postgreswire" // lib/pq, for postgres-compatible services
	DialectMySQL        Dialect = "mysql"
	DialectMSSQL        Dialect = "mssql"
)

// DriverName returns the database/sql driver registered for d
func (d Dialect) DriverName() string {
	switch d {
	case DialectPostgresWire:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	case DialectMSSQL:
		return "sqlserver"
	default:
		return "pgx"
	}
}

// Placeholder returns the bind marker for the n-th (1-based) parameter
func (d Dialect) Placeholder(n int) string {
	switch d {
	case DialectMySQL:
		return "?"
	case DialectMSSQL:
		return "@p" + strconv.Itoa(n)
	default:
		return "$" + strconv.Itoa(n)
	}
}

// QuoteIdent quotes a (possibly schema-qualified) identifier
func (d Dialect) QuoteIdent(name string) (string, error) {
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		switch d {
		case DialectMySQL:
			parts[i] = "`" + p + "`"
		case DialectMSSQL:
			parts[i] = "[" + p + "]"
		default:
			parts[i] = `"` + p + `"`
		}
	}
	return strings.Join(parts, "."), nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// DSN builds a connection string for d from a database credential.
// The connect timeout is always set.
func DSN(d Dialect, creds Credentials) string {
	host := creds.String("localhost", "host")
	user := creds.String("", "user", "username")
	password := creds.String("", "password")
	database := creds.String("", "database", "db")
	ssl := creds.Bool(false, "ssl", "tls")
	timeout := strconv.Itoa(int(ConnectTimeout.Seconds()))

	switch d {
	case DialectMySQL:
		cfg := mysql.NewConfig()
		cfg.User = user
		cfg.Passwd = password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(creds.Int(3306, "port")))
		cfg.DBName = database
		cfg.Timeout = ConnectTimeout
		cfg.ReadTimeout = QueryTimeout
		cfg.WriteTimeout = QueryTimeout
		cfg.ParseTime = true
		if ssl {
			cfg.TLSConfig = "true"
		}
		return cfg.FormatDSN()
	case DialectMSSQL:
		q := url.Values{}
		q.Set("database", database)
		q.Set("connection timeout", timeout)
		q.Set("dial timeout", timeout)
		if ssl {
			q.Set("encrypt", "true")
		} else {
			q.Set("encrypt", "disable")
		}
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(user, password),
			Host:     net.JoinHostPort(host, strconv.Itoa(creds.Int(1433, "port"))),
			RawQuery: q.Encode(),
		}
		return u.String()
	default:
		q := url.Values{}
		q.Set("connect_timeout", timeout)
		sslMode := creds.String("", "sslmode", "sslMode")
		if sslMode == "" {
			sslMode = "disable"
			if ssl {
				sslMode = "require"
			}
		}
		q.Set("sslmode", sslMode)
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(user, password),
			Host:     net.JoinHostPort(host, strconv.Itoa(creds.Int(5432, "port"))),
			Path:     "/" + database,
			RawQuery: q.Encode(),
		}
		return u.String()
	}
}

// OpenSQL opens a single-connection handle and pings it within ConnectTimeout.
// The caller closes the handle when the operation is done.
func OpenSQL(ctx context.Context, d Dialect, creds Credentials) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), DSN(d, creds))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", d, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", d, err)
	}
	return db, nil
}

// ExecuteQuery runs query within QueryTimeout. With fetch the rows are returned
// as objects; otherwise the statement runs in a transaction that is committed
// and the affected row count is reported as {"affectedRows": n}.
func ExecuteQuery(ctx context.Context, db *sql.DB, query string, params []any, fetch bool) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	if fetch {
		rows, err := db.QueryContext(ctx, query, params...)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		defer rows.Close()
		return scanRows(rows)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, params...)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("statement failed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return []map[string]any{{"affectedRows": affected}}, nil
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// BuildInsert renders an INSERT of row into table. Columns are sorted.
func BuildInsert(d Dialect, table string, row map[string]any) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, fmt.Errorf("nothing to insert into %s", table)
	}
	qt, err := d.QuoteIdent(table)
	if err != nil {
		return "", nil, err
	}
	cols := sortedKeys(row)
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		if quoted[i], err = d.QuoteIdent(c); err != nil {
			return "", nil, err
		}
		marks[i] = d.Placeholder(i + 1)
		args[i] = sqlArg(row[c])
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", qt, strings.Join(quoted, ", "), strings.Join(marks, ", "))
	return q, args, nil
}

// BuildUpdate renders an UPDATE of row matched on keyColumn; the key is not updated
func BuildUpdate(d Dialect, table string, row map[string]any, keyColumn string) (string, []any, error) {
	keyValue, ok := row[keyColumn]
	if !ok {
		return "", nil, &MissingParameterError{Name: keyColumn}
	}
	qt, err := d.QuoteIdent(table)
	if err != nil {
		return "", nil, err
	}
	var sets []string
	var args []any
	for _, c := range sortedKeys(row) {
		if c == keyColumn {
			continue
		}
		qc, err := d.QuoteIdent(c)
		if err != nil {
			return "", nil, err
		}
		args = append(args, sqlArg(row[c]))
		sets = append(sets, fmt.Sprintf("%s = %s", qc, d.Placeholder(len(args))))
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("nothing to update in %s", table)
	}
	qk, err := d.QuoteIdent(keyColumn)
	if err != nil {
		return "", nil, err
	}
	args = append(args, sqlArg(keyValue))
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s", qt, strings.Join(sets, ", "), qk, d.Placeholder(len(args)))
	return q, args, nil
}

// BuildDelete renders a DELETE matched on keyColumn
func BuildDelete(d Dialect, table, keyColumn string, keyValue any) (string, []any, error) {
	qt, err := d.QuoteIdent(table)
	if err != nil {
		return "", nil, err
	}
	qk, err := d.QuoteIdent(keyColumn)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %s", qt, qk, d.Placeholder(1)), []any{sqlArg(keyValue)}, nil
}

// QueryParams splits a comma separated "queryReplacement" style parameter
func QueryParams(raw any) []any {
	switch v := decodeJSONValue(raw).(type) {
	case nil:
		return nil
	case []any:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out
	default:
		return []any{v}
	}
}

// sqlArg passes nil through as NULL and stores objects as JSON text
func sqlArg(v any) any {
	if v == nil {
		return nil
	}
	return redisScalar(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
