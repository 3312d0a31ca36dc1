package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/user-lookup/backend/internal/config"
	"github.com/zhouzirui/user-lookup/backend/internal/graph"
	"github.com/zhouzirui/user-lookup/backend/internal/model/user"
	"github.com/zhouzirui/user-lookup/backend/internal/service/lookup"
)

// querytester runs one GraphQL request against the configured data file
// without starting the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("无法加载 .env，改用系统环境变量")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("配置加载失败")
	}

	dataFile := flag.String("data", cfg.Data.File, "用户数据 JSON 文件路径")
	email := flag.String("email", "", "按邮箱查询 (生成 getUserByEmail 查询)")
	queryText := flag.String("query", "", "原始 GraphQL 查询，优先于 -email")
	variables := flag.String("vars", "", "JSON 格式的变量")
	debug := flag.Bool("debug", cfg.GraphQL.Debug, "在错误中附带堆栈")
	timeout := flag.Duration("timeout", 5*time.Second, "执行超时时间")
	flag.Parse()

	req, err := buildRequest(*queryText, *email, *variables)
	if err != nil {
		flag.Usage()
		logrus.WithError(err).Fatal("invalid arguments")
	}

	store, err := user.LoadFile(*dataFile)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load user records")
	}

	exec, err := graph.NewExecutor(lookup.NewService(store), graph.Config{Debug: *debug})
	if err != nil {
		logrus.WithError(err).Fatal("failed to build schema")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result := exec.Execute(ctx, req)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logrus.WithError(err).Fatal("failed to write result")
	}
	if result.HasErrors() {
		os.Exit(1)
	}
}

const emailQuery = `query ($email: Email!) {
  getUserByEmail(email: $email) { id first_name last_name email gender ip_address }
}`

func buildRequest(queryText, email, variables string) (graph.Request, error) {
	if queryText == "" && email == "" {
		return graph.Request{}, fmt.Errorf("one of -query or -email is required")
	}

	if queryText == "" {
		return graph.Request{
			Query:     emailQuery,
			Variables: map[string]interface{}{"email": email},
		}, nil
	}

	req := graph.Request{Query: queryText}
	if variables != "" {
		if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
			return graph.Request{}, fmt.Errorf("invalid -vars: %w", err)
		}
	}
	return req, nil
}
