package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"budget/ledger"
	"budget/models"
)

const usage = `用法:
  budgetcli [-c config.yaml] <命令> [参数]

命令:
  add <类别> <金额> [备注]         新增消费
  edit <ID> <类别> <金额> [备注]   编辑消费
  delete <ID>                      删除消费
  list                             列出消费
  income <金额>                    新增收入
  reset-income                     清空收入
  summary                          收支汇总
  categories                       类别列表

不带命令时进入交互菜单。`

type cli struct {
	svc   *ledger.Service
	owner uint
	out   io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("缺少命令\n%s", usage)
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "add":
		if len(rest) < 2 {
			return fmt.Errorf("用法: add <类别> <金额> [备注]")
		}
		e, err := c.svc.AddExpense(ctx, c.owner, expenseInput(rest))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "已添加消费 #%d: %s - $%s\n", e.ID, e.Category, e.Amount.StringFixed(2))
	case "edit":
		if len(rest) < 3 {
			return fmt.Errorf("用法: edit <ID> <类别> <金额> [备注]")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		e, err := c.svc.EditExpense(ctx, c.owner, id, expenseInput(rest[1:]))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "已更新消费 #%d: %s - $%s\n", e.ID, e.Category, e.Amount.StringFixed(2))
	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("用法: delete <ID>")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		if err := c.svc.DeleteExpense(ctx, c.owner, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "已删除消费 #%d\n", id)
	case "list":
		return c.list(ctx)
	case "income":
		if len(rest) != 1 {
			return fmt.Errorf("用法: income <金额>")
		}
		in, err := c.svc.AddIncome(ctx, c.owner, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "已添加收入 #%d: $%s\n", in.ID, in.Amount.StringFixed(2))
	case "reset-income":
		n, err := c.svc.ResetIncome(ctx, c.owner)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "已清空 %d 条收入\n", n)
	case "summary":
		return c.summary(ctx)
	case "categories":
		for _, name := range c.svc.Categories() {
			fmt.Fprintln(c.out, name)
		}
	case "help", "-h", "--help":
		fmt.Fprintln(c.out, usage)
	default:
		return fmt.Errorf("未知命令 %q\n%s", cmd, usage)
	}
	return nil
}

func expenseInput(args []string) ledger.ExpenseInput {
	in := ledger.ExpenseInput{Category: args[0], Amount: args[1]}
	if len(args) > 2 {
		in.Description = strings.Join(args[2:], " ")
	}
	return in
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("无效的ID: %s", raw)
	}
	return uint(id), nil
}

func (c *cli) list(ctx context.Context) error {
	expenses, err := c.svc.ListExpenses(ctx, c.owner)
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Fprintln(c.out, "暂无消费记录")
		return nil
	}
	fmt.Fprintln(c.out, "消费记录:")
	for _, e := range expenses {
		printExpense(c.out, e)
	}
	return nil
}

func printExpense(w io.Writer, e models.Expense) {
	line := fmt.Sprintf("  #%d %s  %s: $%s", e.ID, e.Date.Format("2006-01-02"), e.Category, e.Amount.StringFixed(2))
	if e.Description != "" {
		line += "  (" + e.Description + ")"
	}
	fmt.Fprintln(w, line)
}

func (c *cli) summary(ctx context.Context) error {
	view, err := c.svc.Dashboard(ctx, c.owner)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "总收入: $%s\n", view.TotalIncome.StringFixed(2))
	fmt.Fprintf(c.out, "总支出: $%s\n", view.TotalSpent.StringFixed(2))
	fmt.Fprintf(c.out, "结余:   $%s\n", view.Remaining.StringFixed(2))
	for _, t := range view.TotalsByCategory {
		fmt.Fprintf(c.out, "  %-16s $%s\n", t.Category, t.Total.StringFixed(2))
	}
	return nil
}

// interactive 交互菜单：1 新增 / 2 查看 / 3 退出
func (c *cli) interactive(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	prompt := func(label string) (string, bool) {
		fmt.Fprint(c.out, label)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		fmt.Fprintln(c.out, "\n--- 预算记账 ---")
		fmt.Fprintln(c.out, "1. 新增消费")
		fmt.Fprintln(c.out, "2. 查看消费")
		fmt.Fprintln(c.out, "3. 退出")

		choice, ok := prompt("请选择 (1-3): ")
		if !ok {
			return scanner.Err()
		}

		switch choice {
		case "1":
			category, ok := prompt("类别: ")
			if !ok {
				return scanner.Err()
			}
			amount, ok := prompt("金额: ")
			if !ok {
				return scanner.Err()
			}
			e, err := c.svc.AddExpense(ctx, c.owner, ledger.ExpenseInput{Category: category, Amount: amount})
			if err != nil {
				fmt.Fprintf(c.out, "添加失败: %v\n", err)
				continue
			}
			fmt.Fprintf(c.out, "已添加消费: %s - $%s\n", e.Category, e.Amount.StringFixed(2))
		case "2":
			if err := c.list(ctx); err != nil {
				fmt.Fprintf(c.out, "读取失败: %v\n", err)
				continue
			}
			if err := c.summary(ctx); err != nil {
				fmt.Fprintf(c.out, "读取失败: %v\n", err)
			}
		case "3":
			fmt.Fprintln(c.out, "再见！")
			return nil
		default:
			fmt.Fprintln(c.out, "无效选项，请重试")
		}
	}
}
