package client

import (
	"context"

	"github.com/kazz187/taskdeck/internal/task"
)

func (c *Client) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskView, error) {
	resp, err := unary[task.CreateTaskRequest, task.CreateTaskResponse](ctx, c, task.CreateTaskProcedure, req)
	if err != nil {
		return nil, err
	}
	return resp.Task, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*task.TaskView, error) {
	resp, err := unary[task.GetTaskRequest, task.GetTaskResponse](ctx, c, task.GetTaskProcedure, &task.GetTaskRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return resp.Task, nil
}

func (c *Client) ListTasks(ctx context.Context, req *task.ListTasksRequest) (*task.ListTasksResponse, error) {
	return unary[task.ListTasksRequest, task.ListTasksResponse](ctx, c, task.ListTasksProcedure, req)
}

func (c *Client) GetBoard(ctx context.Context, req *task.GetBoardRequest) (*task.GetBoardResponse, error) {
	return unary[task.GetBoardRequest, task.GetBoardResponse](ctx, c, task.GetBoardProcedure, req)
}

func (c *Client) UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*task.UpdateTaskResponse, error) {
	return unary[task.UpdateTaskRequest, task.UpdateTaskResponse](ctx, c, task.UpdateTaskProcedure, req)
}

func (c *Client) UpdateTaskStatus(ctx context.Context, req *task.UpdateTaskStatusRequest) (*task.UpdateTaskStatusResponse, error) {
	return unary[task.UpdateTaskStatusRequest, task.UpdateTaskStatusResponse](ctx, c, task.UpdateTaskStatusProcedure, req)
}

func (c *Client) MoveTask(ctx context.Context, req *task.MoveTaskRequest) (*task.MoveTaskResponse, error) {
	return unary[task.MoveTaskRequest, task.MoveTaskResponse](ctx, c, task.MoveTaskProcedure, req)
}

func (c *Client) DeleteTask(ctx context.Context, req *task.DeleteTaskRequest) (*task.DeleteTaskResponse, error) {
	return unary[task.DeleteTaskRequest, task.DeleteTaskResponse](ctx, c, task.DeleteTaskProcedure, req)
}

func (c *Client) BatchDeleteTasks(ctx context.Context, ids []string) (*task.BatchDeleteTasksResponse, error) {
	return unary[task.BatchDeleteTasksRequest, task.BatchDeleteTasksResponse](ctx, c, task.BatchDeleteTasksProcedure, &task.BatchDeleteTasksRequest{IDs: ids})
}

func (c *Client) DuplicateTask(ctx context.Context, id string) (*task.TaskView, error) {
	resp, err := unary[task.DuplicateTaskRequest, task.DuplicateTaskResponse](ctx, c, task.DuplicateTaskProcedure, &task.DuplicateTaskRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return resp.Task, nil
}
